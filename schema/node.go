// Package schema holds the validated intermediate form of the JSON-Schema fragments
// found under an AsyncAPI document's components. Every fragment is decoded once into
// a Node; downstream code matches on Kind instead of probing for keys.
package schema

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a schema node.
type Kind int

const (
	// KindUnknown is a node with neither a recognized type nor a $ref.
	KindUnknown Kind = iota
	KindRef
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindRef:     "ref",
	KindString:  "string",
	KindInteger: "integer",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	return kindNames[k]
}

// IsPrimitive reports whether k is one of the scalar JSON-Schema types.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindInteger, KindNumber, KindBoolean:
		return true
	default:
		return false
	}
}

// PrimitiveKind maps a JSON-Schema type keyword to its Kind.
func PrimitiveKind(keyword string) (Kind, bool) {
	switch keyword {
	case "string":
		return KindString, true
	case "integer":
		return KindInteger, true
	case "number":
		return KindNumber, true
	case "boolean":
		return KindBoolean, true
	default:
		return KindUnknown, false
	}
}

// Literal is a scalar value copied from the document, kept in its source spelling so
// generated code repeats exactly what the schema author wrote.
type Literal struct {
	Raw      string
	IsString bool
	IsBool   bool
	Number   float64
}

// String returns the literal as it appears in the document.
func (l Literal) String() string {
	return l.Raw
}

// IsNumber reports whether the literal is numeric.
func (l Literal) IsNumber() bool {
	return !l.IsString && !l.IsBool
}

func newLiteral(node *yaml.Node) (Literal, bool) {
	switch node.ShortTag() {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(strings.ReplaceAll(node.Value, "_", ""), 64)
		if err != nil {
			return Literal{}, false
		}
		return Literal{Raw: node.Value, Number: f}, true
	case "!!str":
		return Literal{Raw: node.Value, IsString: true}, true
	case "!!bool":
		return Literal{Raw: node.Value, IsBool: true}, true
	default:
		return Literal{}, false
	}
}

// NumberLiteral builds a numeric literal, mostly useful in tests.
func NumberLiteral(raw string) Literal {
	f, _ := strconv.ParseFloat(raw, 64)
	return Literal{Raw: raw, Number: f}
}

// StringLiteral builds a string literal.
func StringLiteral(raw string) Literal {
	return Literal{Raw: raw, IsString: true}
}

// Property is one named entry of an object schema's properties, in declared order.
type Property struct {
	Name    string
	KeyNode *yaml.Node
	Schema  *Node
}

// Node is a decoded schema fragment.
type Node struct {
	Type        string
	Ref         string
	Items       *Node
	Properties  []Property
	Required    []string
	Enum        []Literal
	Minimum     *Literal
	Maximum     *Literal
	MinLength   *int
	MaxLength   *int
	Title       string
	Summary     string
	Description string
	// Payload is the message payload held under "schema" (or "payload") on message entries.
	Payload *Node
	// Fields are the mapping valued keys that are not schema keywords. Entries that
	// carry neither a type nor a payload are lowered from these.
	Fields []Property
	// Skipped are non-mapping keys that are not schema keywords.
	Skipped []Property
	// Unsupported lists the JSON-Schema keywords present on the node that are not
	// represented in generated code.
	Unsupported []string
	Examples    []*yaml.Node

	RootNode *yaml.Node
}

// Kind classifies the node. A declared type takes precedence over $ref.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindUnknown
	}

	switch n.Type {
	case "":
		if n.Ref != "" {
			return KindRef
		}
		return KindUnknown
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		k, _ := PrimitiveKind(n.Type)
		return k
	}
}

// HasType reports whether the node declares a type keyword.
func (n *Node) HasType() bool {
	return n != nil && n.Type != ""
}

// IsRequired reports whether name is listed in the node's required keywords.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// PayloadOrSelf returns the node that decides the shape of an entry: the message
// payload when the node wraps one, otherwise the node itself. A payload declaring
// neither type nor $ref gives way to a typed wrapper.
func (n *Node) PayloadOrSelf() *Node {
	if n == nil || n.Payload == nil {
		return n
	}
	if n.Payload.Kind() == KindUnknown && n.HasType() {
		return n
	}
	return n.Payload
}

// Doc joins the summary and description with a newline, skipping whichever is empty.
func (n *Node) Doc() string {
	if n == nil {
		return ""
	}
	switch {
	case n.Summary == "":
		return n.Description
	case n.Description == "":
		return n.Summary
	default:
		return n.Summary + "\n" + n.Description
	}
}

// HasConstraints reports whether the node declares any constraint that validate checks.
func (n *Node) HasConstraints() bool {
	if n == nil {
		return false
	}
	return n.MinLength != nil || n.MaxLength != nil || n.Minimum != nil || n.Maximum != nil || len(n.Enum) > 0
}

// Line returns the source line of the node or 0.
func (n *Node) Line() int {
	if n == nil || n.RootNode == nil {
		return 0
	}
	return n.RootNode.Line
}

// RefName returns the last path segment of a $ref with JSON pointer escapes decoded,
// "#/components/schemas/user_profile" gives "user_profile".
func RefName(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}
