package schema

import (
	"strings"

	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"github.com/speakeasy-api/asyncapi-codegen/yml"
	"gopkg.in/yaml.v3"
)

// unsupportedKeywords are recognized JSON-Schema keywords with no representation in
// generated types. They are recorded so the generator can report them.
var unsupportedKeywords = map[string]struct{}{
	"oneOf":                {},
	"anyOf":                {},
	"allOf":                {},
	"not":                  {},
	"patternProperties":    {},
	"additionalProperties": {},
	"if":                   {},
	"then":                 {},
	"else":                 {},
	"prefixItems":          {},
}

// ignoredKeywords are schema or message keywords that carry no type information.
var ignoredKeywords = map[string]struct{}{
	"format":           {},
	"default":          {},
	"example":          {},
	"const":            {},
	"nullable":         {},
	"readOnly":         {},
	"writeOnly":        {},
	"deprecated":       {},
	"pattern":          {},
	"exclusiveMinimum": {},
	"exclusiveMaximum": {},
	"multipleOf":       {},
	"minItems":         {},
	"maxItems":         {},
	"uniqueItems":      {},
	"minProperties":    {},
	"maxProperties":    {},
	"$id":              {},
	"$schema":          {},
	"$comment":         {},
	"name":             {},
	"contentType":      {},
	"schemaFormat":     {},
	"messageId":        {},
	"headers":          {},
	"correlationId":    {},
	"bindings":         {},
	"traits":           {},
	"tags":             {},
	"externalDocs":     {},
}

// Decode decodes a schema fragment. A nil node is returned when the fragment is not a
// mapping; such a fragment can't describe a type. Shape problems in individual keywords
// are returned as validation errors and the offending keyword is ignored.
func Decode(node *yaml.Node) (*Node, []error) {
	node = yml.ResolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, nil
	}

	d := &decoder{}
	n := d.decode(node)
	return n, d.errs
}

type decoder struct {
	errs []error
}

func (d *decoder) typeMismatch(node *yaml.Node, keyword, expected string) {
	d.errs = append(d.errs, validation.NewError(node, validation.RuleValidationTypeMismatch,
		"%s expected %s, got %s", keyword, expected, yml.Describe(node)))
}

func (d *decoder) decode(node *yaml.Node) *Node {
	n := &Node{RootNode: node}

	for keyNode, valueNode := range yml.MapEntries(node) {
		key := keyNode.Value

		switch key {
		case "type":
			d.decodeType(n, valueNode)
		case "$ref":
			if s, ok := d.scalar(valueNode, key); ok {
				n.Ref = s
			}
		case "items":
			if valueNode.Kind != yaml.MappingNode {
				d.typeMismatch(valueNode, key, "object")
				continue
			}
			n.Items = d.decode(valueNode)
		case "properties":
			n.Properties = d.decodeProperties(valueNode, key)
		case "required":
			d.decodeRequired(n, valueNode)
		case "enum":
			d.decodeEnum(n, valueNode)
		case "minimum":
			n.Minimum = d.number(valueNode, key)
		case "maximum":
			n.Maximum = d.number(valueNode, key)
		case "minLength":
			n.MinLength = d.length(valueNode, key)
		case "maxLength":
			n.MaxLength = d.length(valueNode, key)
		case "title":
			n.Title, _ = d.scalar(valueNode, key)
		case "summary":
			n.Summary, _ = d.scalar(valueNode, key)
		case "description":
			n.Description, _ = d.scalar(valueNode, key)
		case "schema", "payload":
			if valueNode.Kind != yaml.MappingNode {
				d.typeMismatch(valueNode, key, "object")
				continue
			}
			// "schema" wins over "payload" when both are present.
			if n.Payload != nil && key == "payload" {
				continue
			}
			n.Payload = d.decode(valueNode)
		case "examples":
			if valueNode.Kind != yaml.SequenceNode {
				d.typeMismatch(valueNode, key, "sequence")
				continue
			}
			n.Examples = append(n.Examples, valueNode.Content...)
		default:
			if _, ok := unsupportedKeywords[key]; ok {
				n.Unsupported = append(n.Unsupported, key)
				continue
			}
			if _, ok := ignoredKeywords[key]; ok || strings.HasPrefix(key, "x-") {
				continue
			}
			if valueNode.Kind == yaml.MappingNode {
				n.Fields = append(n.Fields, Property{Name: key, KeyNode: keyNode, Schema: d.decode(valueNode)})
			} else {
				n.Skipped = append(n.Skipped, Property{Name: key, KeyNode: keyNode})
			}
		}
	}

	return n
}

func (d *decoder) decodeType(n *Node, valueNode *yaml.Node) {
	switch valueNode.Kind {
	case yaml.ScalarNode:
		n.Type = valueNode.Value
	case yaml.SequenceNode:
		// A type list such as [string, "null"] keeps its first non-null member.
		for _, t := range valueNode.Content {
			t = yml.ResolveAlias(t)
			if t.Kind == yaml.ScalarNode && t.Value != "null" {
				n.Type = t.Value
				return
			}
		}
	default:
		d.typeMismatch(valueNode, "type", "string")
	}
}

func (d *decoder) decodeProperties(valueNode *yaml.Node, keyword string) []Property {
	if valueNode.Kind != yaml.MappingNode {
		d.typeMismatch(valueNode, keyword, "object")
		return nil
	}

	var props []Property
	seen := map[string]int{}
	for propKey, propValue := range yml.MapEntries(valueNode) {
		prop := Property{Name: propKey.Value, KeyNode: propKey}
		if propValue.Kind == yaml.MappingNode {
			prop.Schema = d.decode(propValue)
		}

		// A repeated key replaces the earlier definition but keeps its position.
		if i, ok := seen[prop.Name]; ok {
			props[i] = prop
			continue
		}
		seen[prop.Name] = len(props)
		props = append(props, prop)
	}
	return props
}

func (d *decoder) decodeRequired(n *Node, valueNode *yaml.Node) {
	if valueNode.Kind != yaml.SequenceNode {
		d.typeMismatch(valueNode, "required", "sequence")
		return
	}
	for _, item := range valueNode.Content {
		if s, ok := d.scalar(item, "required"); ok {
			n.Required = append(n.Required, s)
		}
	}
}

func (d *decoder) decodeEnum(n *Node, valueNode *yaml.Node) {
	if valueNode.Kind != yaml.SequenceNode {
		d.typeMismatch(valueNode, "enum", "sequence")
		return
	}
	for _, item := range valueNode.Content {
		item = yml.ResolveAlias(item)
		if item.Kind != yaml.ScalarNode {
			d.typeMismatch(item, "enum", "scalar")
			continue
		}
		if lit, ok := newLiteral(item); ok {
			n.Enum = append(n.Enum, lit)
		}
	}
}

func (d *decoder) scalar(valueNode *yaml.Node, keyword string) (string, bool) {
	s, ok := yml.ScalarString(valueNode)
	if !ok {
		d.typeMismatch(valueNode, keyword, "string")
	}
	return s, ok
}

func (d *decoder) number(valueNode *yaml.Node, keyword string) *Literal {
	if !yml.IsNumber(valueNode) {
		d.typeMismatch(valueNode, keyword, "number")
		return nil
	}
	lit, ok := newLiteral(valueNode)
	if !ok {
		d.typeMismatch(valueNode, keyword, "number")
		return nil
	}
	return &lit
}

func (d *decoder) length(valueNode *yaml.Node, keyword string) *int {
	v, ok := yml.ScalarInt(valueNode)
	if !ok || v < 0 {
		d.typeMismatch(valueNode, keyword, "non-negative integer")
		return nil
	}
	return &v
}
