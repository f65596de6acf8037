// Package asyncapi loads AsyncAPI documents and exposes the schema and message
// entries of their components section as one ordered symbol space.
package asyncapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/internal/version"
	"github.com/speakeasy-api/asyncapi-codegen/naming"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"github.com/speakeasy-api/asyncapi-codegen/yml"
	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	"gopkg.in/yaml.v3"
)

// Section names the components section an entry was declared in.
type Section string

const (
	SectionSchemas  Section = "schemas"
	SectionMessages Section = "messages"
)

var sectionPaths = []struct {
	section Section
	path    string
}{
	{section: SectionSchemas, path: "$.components.schemas"},
	{section: SectionMessages, path: "$.components.messages"},
}

// Entry is one named definition under components.schemas or components.messages.
type Entry struct {
	// Key is the name the entry is declared under.
	Key     string
	Section Section
	Schema  *schema.Node
	KeyNode *yaml.Node
}

// TypeName is the normalized type name of the entry.
func (e Entry) TypeName() string {
	return naming.ToTypeName(e.Key)
}

// Document is a decoded AsyncAPI document.
type Document struct {
	// Version is the parsed "asyncapi" field, nil when it was missing or malformed.
	Version *version.Version

	RootNode      *yaml.Node
	hasComponents bool
	entries       []Entry
	index         map[string]int
}

// HasComponents reports whether the document declares a components section.
func (d *Document) HasComponents() bool {
	return d.hasComponents
}

// Entries returns the merged schema and message entries in declaration order.
func (d *Document) Entries() []Entry {
	return d.entries
}

// Entry looks up an entry by its declared key.
func (d *Document) Entry(key string) (Entry, bool) {
	i, ok := d.index[key]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Load reads and decodes the document at path from fsys.
func Load(ctx context.Context, fsys fs.FS, path string) (*Document, []error, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	return Unmarshal(ctx, f)
}

// Unmarshal decodes a YAML or JSON AsyncAPI document. The returned validation errors
// describe problems that were worked around; err is only set when the document can't
// be used at all.
func Unmarshal(ctx context.Context, r io.Reader) (*Document, []error, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil, errors.ErrInvalidDocument.Wrapf("document is empty")
		}
		return nil, nil, errors.ErrInvalidDocument.Wrap(err)
	}

	return decodeDocument(ctx, &root)
}

func decodeDocument(_ context.Context, root *yaml.Node) (*Document, []error, error) {
	content := yml.Unwrap(root)
	if content == nil || content.Kind != yaml.MappingNode {
		kind := "empty"
		if content != nil {
			kind = yml.Describe(content)
		}
		return nil, nil, errors.ErrInvalidDocument.Wrapf("expected an object at the document root, got %s", kind)
	}

	doc := &Document{
		RootNode: root,
		index:    map[string]int{},
	}

	var errs []error
	errs = append(errs, doc.decodeVersion(content)...)

	componentsNode := yml.GetMapElement(content, "components")
	if componentsNode == nil || yml.IsNull(componentsNode) {
		return doc, errs, nil
	}
	if componentsNode.Kind != yaml.MappingNode {
		return nil, errs, errors.ErrInvalidDocument.Wrapf("components expected object, got %s", yml.Describe(componentsNode))
	}
	doc.hasComponents = true

	for _, sp := range sectionPaths {
		path, err := jsonpath.NewPath(sp.path)
		if err != nil {
			return nil, errs, fmt.Errorf("invalid section path %s: %w", sp.path, err)
		}

		for _, sectionNode := range path.Query(root) {
			errs = append(errs, doc.addSection(sp.section, yml.ResolveAlias(sectionNode))...)
		}
	}

	return doc, errs, nil
}

func (d *Document) decodeVersion(content *yaml.Node) []error {
	versionNode := yml.GetMapElement(content, "asyncapi")
	raw, ok := yml.ScalarString(versionNode)
	if !ok {
		return []error{validation.NewWarning(content, validation.RuleValidationSupportedVersion, "document does not declare an asyncapi version")}
	}

	v, err := version.Parse(raw)
	if err != nil {
		return []error{validation.NewWarning(versionNode, validation.RuleValidationSupportedVersion, "asyncapi version %q is not valid: %s", raw, err)}
	}
	d.Version = v

	if !v.IsSupported() {
		return []error{validation.NewWarning(versionNode, validation.RuleValidationSupportedVersion, "asyncapi version %s is not supported, generating on a best effort basis", v)}
	}
	return nil
}

func (d *Document) addSection(section Section, sectionNode *yaml.Node) []error {
	if sectionNode == nil || yml.IsNull(sectionNode) {
		return nil
	}
	if sectionNode.Kind != yaml.MappingNode {
		return []error{validation.NewError(sectionNode, validation.RuleValidationTypeMismatch,
			"components.%s expected object, got %s", section, yml.Describe(sectionNode))}
	}

	var errs []error
	for keyNode, valueNode := range yml.MapEntries(sectionNode) {
		node, decodeErrs := schema.Decode(valueNode)
		for _, err := range decodeErrs {
			errs = append(errs, withEntry(err, keyNode.Value))
		}
		if node == nil {
			errs = append(errs, validation.NewWarning(valueNode, validation.RuleGenerationSkippedEntry,
				"expected object, got %s", yml.Describe(valueNode)).At(keyNode.Value, ""))
			continue
		}

		entry := Entry{Key: keyNode.Value, Section: section, Schema: node, KeyNode: keyNode}

		// Messages merge into the schema map: a repeated key replaces the earlier
		// definition and keeps its position.
		if i, ok := d.index[entry.Key]; ok {
			d.entries[i] = entry
			continue
		}
		d.index[entry.Key] = len(d.entries)
		d.entries = append(d.entries, entry)
	}
	return errs
}

func withEntry(err error, entry string) error {
	var vErr *validation.Error
	if errors.As(err, &vErr) && vErr.Entry == "" {
		vErr.Entry = entry
	}
	return err
}
