// Package conformance checks payloads against the schemas of an AsyncAPI document with
// a JSON Schema validator. It backs the examples command, and its results cross-check
// the constraint semantics of the generated code.
package conformance

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"github.com/speakeasy-api/asyncapi-codegen/yml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const documentURL = "asyncapi.json"

var defaultPrinter = message.NewPrinter(language.English)

// Validator validates payloads against the entries of one document.
type Validator struct {
	doc      *asyncapi.Document
	compiler *jsValidator.Compiler

	mu       sync.Mutex
	compiled map[string]*jsValidator.Schema
}

// New prepares a Validator for doc. Schemas are compiled on first use.
func New(doc *asyncapi.Document) (*Validator, error) {
	if doc == nil || doc.RootNode == nil {
		return nil, errors.ErrInvalidDocument.Wrapf("no document to validate against")
	}

	root, err := jsonValue(doc.RootNode)
	if err != nil {
		return nil, errors.ErrInvalidDocument.Wrap(err)
	}

	c := jsValidator.NewCompiler()
	c.DefaultDraft(jsValidator.Draft7)
	if err := c.AddResource(documentURL, root); err != nil {
		return nil, errors.ErrInvalidDocument.Wrap(err)
	}

	return &Validator{
		doc:      doc,
		compiler: c,
		compiled: map[string]*jsValidator.Schema{},
	}, nil
}

// ValidatePayload validates payload against the schema of the entry declared under
// entryKey. Message entries are validated against their payload schema. payload is a
// decoded JSON value; numbers may be float64 or json.Number.
func (v *Validator) ValidatePayload(entryKey string, payload any) error {
	entry, ok := v.doc.Entry(entryKey)
	if !ok {
		return errors.ErrUnknownType.Wrapf("%s", entryKey)
	}

	sch, err := v.schemaFor(entry)
	if err != nil {
		return err
	}

	if err := sch.Validate(payload); err != nil {
		var vErr *jsValidator.ValidationError
		if errors.As(err, &vErr) {
			return &PayloadError{Entry: entryKey, Causes: rootCauses(vErr)}
		}
		return err
	}
	return nil
}

// PayloadError lists every failing leaf of a payload validation.
type PayloadError struct {
	Entry  string
	Causes []string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload does not match %s: %s", e.Entry, strings.Join(e.Causes, "; "))
}

// ExampleResult is the outcome of validating one declared example.
type ExampleResult struct {
	Entry string
	// Index is the position of the example in the examples list.
	Index int
	// Name is the example's name when the message example declares one.
	Name   string
	Errors []error
}

// Valid reports whether the example matched its schema.
func (r ExampleResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateExamples validates every value listed under "examples" on schema and message
// entries. Message examples holding a "payload" key contribute that payload.
func (v *Validator) ValidateExamples() []ExampleResult {
	var results []ExampleResult

	for _, entry := range v.doc.Entries() {
		if entry.Schema == nil {
			continue
		}
		examples := yml.ResolveAlias(yml.GetMapElement(yml.ResolveAlias(entry.Schema.RootNode), "examples"))
		if examples == nil || examples.Kind != yaml.SequenceNode {
			continue
		}

		var (
			sch     *jsValidator.Schema
			loadErr error
		)
		for i, example := range examples.Content {
			res := ExampleResult{Entry: entry.Key, Index: i}
			property := "examples[" + strconv.Itoa(i) + "]"

			payloadNode := example
			if entry.Section == asyncapi.SectionMessages {
				if p := yml.GetMapElement(yml.ResolveAlias(example), "payload"); p != nil {
					payloadNode = p
				}
				res.Name, _ = yml.ScalarString(yml.GetMapElement(yml.ResolveAlias(example), "name"))
			}

			if sch == nil && loadErr == nil {
				sch, loadErr = v.schemaFor(entry)
			}
			if loadErr != nil {
				res.Errors = append(res.Errors, validation.NewError(example, validation.RuleValidationExampleMismatch, "%s", loadErr.Error()).At(entry.Key, property))
				results = append(results, res)
				continue
			}

			payload, err := jsonValue(payloadNode)
			if err != nil {
				res.Errors = append(res.Errors, validation.NewError(payloadNode, validation.RuleValidationExampleMismatch, "%s", err.Error()).At(entry.Key, property))
				results = append(results, res)
				continue
			}

			if err := sch.Validate(payload); err != nil {
				var vErr *jsValidator.ValidationError
				if errors.As(err, &vErr) {
					for _, cause := range rootCauses(vErr) {
						res.Errors = append(res.Errors, validation.NewError(payloadNode, validation.RuleValidationExampleMismatch, "%s", cause).At(entry.Key, property))
					}
				} else {
					res.Errors = append(res.Errors, validation.NewError(payloadNode, validation.RuleValidationExampleMismatch, "%s", err.Error()).At(entry.Key, property))
				}
			}
			results = append(results, res)
		}
	}

	return results
}

func (v *Validator) schemaFor(entry asyncapi.Entry) (*jsValidator.Schema, error) {
	loc, err := schemaLocation(entry)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[loc]; ok {
		return sch, nil
	}
	sch, err := v.compiler.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema of %s: %w", entry.Key, err)
	}
	v.compiled[loc] = sch
	return sch, nil
}

// schemaLocation addresses the schema an entry's values are validated against.
func schemaLocation(entry asyncapi.Entry) (string, error) {
	ptr := "/components/" + string(entry.Section) + "/" + escapeToken(entry.Key)

	if entry.Section == asyncapi.SectionMessages {
		root := yml.ResolveAlias(entry.Schema.RootNode)
		switch {
		case yml.HasKey(root, "schema"):
			ptr += "/schema"
		case yml.HasKey(root, "payload"):
			ptr += "/payload"
		default:
			return "", fmt.Errorf("message %s declares no payload schema", entry.Key)
		}
	}

	return documentURL + "#" + ptr, nil
}

func escapeToken(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// rootCauses flattens a validation error into one message per failing leaf.
func rootCauses(err *jsValidator.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := "/" + strings.Join(err.InstanceLocation, "/")
		return []string{fmt.Sprintf("at %s: %s", loc, err.ErrorKind.LocalizedString(defaultPrinter))}
	}

	var causes []string
	for _, cause := range err.Causes {
		causes = append(causes, rootCauses(cause)...)
	}
	return causes
}
