// Package ir is the intermediate representation every back end prints from. A schema
// entry is lowered once into a Decl (an Object or an Alias) whose members carry fully
// resolved types and constraints, so printing never has to look at schema nodes or
// consult the resolver again.
package ir

import (
	"strings"

	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// TypeKind identifies a TypeRef variant.
type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeNamed
	TypeSequence
	TypeOptional
)

// TypeRef is the type of a member.
type TypeRef interface {
	Kind() TypeKind
	String() string
}

// Primitive is one of the scalar JSON-Schema types.
type Primitive struct {
	Type schema.Kind
}

func (p Primitive) Kind() TypeKind { return TypePrimitive }
func (p Primitive) String() string { return p.Type.String() }

// Named refers to a type by name: another top-level entry or, when Synthesized is
// set, an object nested in the declaring object.
type Named struct {
	Name string
	// Primitive is set when the name is an alias chain ending in a primitive.
	Primitive schema.Kind
	// Target is the object type the name finally resolves to. It equals Name unless
	// Name is an alias of another object type.
	Target      string
	Synthesized bool
}

func (n Named) Kind() TypeKind { return TypeNamed }
func (n Named) String() string { return n.Name }

// IsPrimitive reports whether the name resolves to a primitive.
func (n Named) IsPrimitive() bool { return n.Primitive.IsPrimitive() }

// Sequence is an ordered collection. An absent sequence is empty, never missing.
type Sequence struct {
	Elem TypeRef
}

func (s Sequence) Kind() TypeKind { return TypeSequence }
func (s Sequence) String() string { return "[]" + s.Elem.String() }

// Optional is a value that may be absent.
type Optional struct {
	Elem TypeRef
}

func (o Optional) Kind() TypeKind { return TypeOptional }
func (o Optional) String() string { return "?" + o.Elem.String() }

// ScalarKind returns the primitive a scalar type resolves to, or KindObject for object
// types. Sequence and Optional wrappers are looked through.
func ScalarKind(t TypeRef) schema.Kind {
	switch v := t.(type) {
	case Primitive:
		return v.Type
	case Named:
		if v.IsPrimitive() {
			return v.Primitive
		}
		return schema.KindObject
	case Sequence:
		return ScalarKind(v.Elem)
	case Optional:
		return ScalarKind(v.Elem)
	default:
		return schema.KindUnknown
	}
}

// Constraints are the checks validate applies to a member value, or to every element
// of a sequence member.
type Constraints struct {
	MinLength *int
	MaxLength *int
	Minimum   *schema.Literal
	Maximum   *schema.Literal
	Enum      []schema.Literal
}

// ConstraintsOf copies the constraints declared on node.
func ConstraintsOf(node *schema.Node) Constraints {
	if node == nil {
		return Constraints{}
	}
	return Constraints{
		MinLength: node.MinLength,
		MaxLength: node.MaxLength,
		Minimum:   node.Minimum,
		Maximum:   node.Maximum,
		Enum:      node.Enum,
	}
}

// IsZero reports whether no constraint is declared.
func (c Constraints) IsZero() bool {
	return c.MinLength == nil && c.MaxLength == nil && c.Minimum == nil && c.Maximum == nil && len(c.Enum) == 0
}

// ForKind drops the constraints that do not apply to values of kind k: lengths apply
// to strings, bounds to numbers, enums to strings and numbers.
func (c Constraints) ForKind(k schema.Kind) Constraints {
	switch k {
	case schema.KindString:
		return Constraints{MinLength: c.MinLength, MaxLength: c.MaxLength, Enum: c.Enum}
	case schema.KindInteger, schema.KindNumber:
		return Constraints{Minimum: c.Minimum, Maximum: c.Maximum, Enum: c.Enum}
	default:
		return Constraints{}
	}
}

// Member is one field of an object, in the declared order of its property.
type Member struct {
	// SchemaName is the property key as written in the document. Serialized values use it.
	SchemaName string
	// Name is the normalized member name.
	Name     string
	Type     TypeRef
	Required bool
	// Constraints apply to the value, or to each element when Type is a Sequence.
	Constraints Constraints
}

// Value returns the member type without its Optional wrapper.
func (m Member) Value() TypeRef {
	if o, ok := m.Type.(Optional); ok {
		return o.Elem
	}
	return m.Type
}

// Elem returns the element type of a sequence member or the value type otherwise.
func (m Member) Elem() TypeRef {
	if s, ok := m.Value().(Sequence); ok {
		return s.Elem
	}
	return m.Value()
}

// IsSequence reports whether the member is a collection.
func (m Member) IsSequence() bool {
	return m.Value().Kind() == TypeSequence
}

// IsOptional reports whether the member may be absent.
func (m Member) IsOptional() bool {
	return m.Type.Kind() == TypeOptional
}

// DeclKind identifies a Decl variant.
type DeclKind int

const (
	DeclObject DeclKind = iota
	DeclAlias
)

// Decl is one lowered top-level entry.
type Decl interface {
	DeclKind() DeclKind
	TypeName() string
	// Refs lists the other top-level types the declaration depends on, sorted.
	Refs() []string
}

// Object is a struct type with its synthesized nested types.
type Object struct {
	Name     string
	Doc      string
	EntryKey string
	Members  []Member
	// Nested are the objects synthesized from inline object properties and array
	// items, in the order their properties are declared.
	Nested []*Object
	refs   []string
}

func (o *Object) DeclKind() DeclKind { return DeclObject }
func (o *Object) TypeName() string   { return o.Name }
func (o *Object) Refs() []string     { return o.refs }

// NestedObject returns the synthesized object called name declared directly in o.
func (o *Object) NestedObject(name string) (*Object, bool) {
	for _, n := range o.Nested {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Walk calls fn for every nested object and then for o, so definitions come before
// their first use. path holds the names from the top-level object down to obj.
func (o *Object) Walk(fn func(obj *Object, path []string)) {
	o.walk(nil, fn)
}

func (o *Object) walk(parents []string, fn func(obj *Object, path []string)) {
	path := append(append([]string(nil), parents...), o.Name)
	for _, n := range o.Nested {
		n.walk(path, fn)
	}
	fn(o, path)
}

// Alias is a type alias of a primitive or of another named type.
type Alias struct {
	Name     string
	Doc      string
	EntryKey string
	// Target is a Primitive or a Named.
	Target TypeRef
}

func (a *Alias) DeclKind() DeclKind { return DeclAlias }
func (a *Alias) TypeName() string   { return a.Name }

func (a *Alias) Refs() []string {
	if n, ok := a.Target.(Named); ok {
		return []string{n.Name}
	}
	return nil
}

// QualifiedName joins a nested object path into one flat name, for targets without
// nested type scopes.
func QualifiedName(path []string) string {
	return strings.Join(path, "")
}
