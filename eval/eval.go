// Package eval interprets the four operations every generated object type exposes
// (validate, serialize, deserialize from a value, deserialize from text) directly over
// the IR. Generated code in any target language is expected to behave exactly like
// this interpreter.
//
// Values are modelled as follows: strings are string, integers int64, numbers
// float64, booleans bool, sequences []any and objects *Object. An optional member is
// absent when its key is missing from Object.Fields.
package eval

import (
	"bytes"
	"encoding/json"
	"math"
	"unicode/utf8"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// Object is an instance of a generated object type.
type Object struct {
	Type string
	// Fields holds member values keyed by normalized member name.
	Fields map[string]any

	decl *ir.Object
}

// Interpreter evaluates operations over a set of declarations.
type Interpreter struct {
	objects map[string]*ir.Object
	aliases map[string]*ir.Alias
}

// New indexes decls by type name. Nil declarations are ignored.
func New(decls []ir.Decl) *Interpreter {
	in := &Interpreter{
		objects: map[string]*ir.Object{},
		aliases: map[string]*ir.Alias{},
	}
	for _, d := range decls {
		switch d := d.(type) {
		case *ir.Object:
			if d != nil {
				in.objects[d.Name] = d
			}
		case *ir.Alias:
			if d != nil {
				in.aliases[d.Name] = d
			}
		}
	}
	return in
}

// Lookup returns the object declaration typeName refers to, following aliases of
// object types.
func (in *Interpreter) Lookup(typeName string) (*ir.Object, error) {
	name := typeName
	seen := map[string]bool{}
	for !seen[name] {
		seen[name] = true
		if obj, ok := in.objects[name]; ok {
			return obj, nil
		}
		a, ok := in.aliases[name]
		if !ok {
			break
		}
		n, ok := a.Target.(ir.Named)
		if !ok || n.IsPrimitive() {
			return nil, errors.ErrUnknownType.Wrapf("%s is an alias of a primitive", typeName)
		}
		name = n.Target
	}
	return nil, errors.ErrUnknownType.Wrapf("%s", typeName)
}

// NewObject returns an empty instance of typeName.
func (in *Interpreter) NewObject(typeName string) (*Object, error) {
	decl, err := in.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return newObject(decl), nil
}

// NewMember returns an empty instance of the object type of member in parent.
func (in *Interpreter) NewMember(parent *Object, member string) (*Object, error) {
	for _, m := range parent.decl.Members {
		if m.Name != member {
			continue
		}
		n, ok := m.Elem().(ir.Named)
		if !ok || n.IsPrimitive() {
			break
		}
		decl, ok := in.objectOf(parent.decl, n)
		if !ok {
			break
		}
		return newObject(decl), nil
	}
	return nil, errors.ErrUnknownType.Wrapf("member %s of %s is not an object", member, parent.Type)
}

// newObject returns an instance with every sequence member set to an empty sequence.
func newObject(decl *ir.Object) *Object {
	o := &Object{Type: decl.Name, Fields: map[string]any{}, decl: decl}
	for _, m := range decl.Members {
		if m.IsSequence() {
			o.Fields[m.Name] = []any{}
		}
	}
	return o
}

func (in *Interpreter) objectOf(owner *ir.Object, n ir.Named) (*ir.Object, bool) {
	if n.Synthesized {
		return owner.NestedObject(n.Name)
	}
	obj, err := in.Lookup(n.Target)
	return obj, err == nil
}

// Validate reports whether every declared constraint holds. Absent optional members
// and empty sequences are always valid.
func (in *Interpreter) Validate(v *Object) bool {
	if v == nil || v.decl == nil {
		return false
	}

	for _, m := range v.decl.Members {
		val, present := v.Fields[m.Name]
		switch {
		case m.IsSequence():
			if !present {
				continue
			}
			items, ok := val.([]any)
			if !ok {
				return false
			}
			for _, item := range items {
				if !in.check(v.decl, m.Elem(), m.Constraints, item) {
					return false
				}
			}
		case !present:
			if m.Required {
				return false
			}
		default:
			if !in.check(v.decl, m.Value(), m.Constraints, val) {
				return false
			}
		}
	}
	return true
}

func (in *Interpreter) check(owner *ir.Object, t ir.TypeRef, c ir.Constraints, val any) bool {
	switch ir.ScalarKind(t) {
	case schema.KindString:
		s, ok := val.(string)
		if !ok {
			return false
		}
		n := utf8.RuneCountInString(s)
		if c.MaxLength != nil && n > *c.MaxLength {
			return false
		}
		if c.MinLength != nil && n < *c.MinLength {
			return false
		}
		return inEnum(c.Enum, func(l schema.Literal) bool { return l.IsString && l.Raw == s })
	case schema.KindInteger:
		i, ok := val.(int64)
		if !ok {
			return false
		}
		return checkNumber(c, float64(i))
	case schema.KindNumber:
		f, ok := val.(float64)
		if !ok {
			return false
		}
		return checkNumber(c, f)
	case schema.KindBoolean:
		_, ok := val.(bool)
		return ok
	case schema.KindObject:
		o, ok := val.(*Object)
		if !ok {
			return false
		}
		if o.decl == nil {
			if n, ok := t.(ir.Named); ok {
				o.decl, _ = in.objectOf(owner, n)
			}
		}
		return in.Validate(o)
	default:
		return false
	}
}

func checkNumber(c ir.Constraints, f float64) bool {
	if c.Maximum != nil && f > c.Maximum.Number {
		return false
	}
	if c.Minimum != nil && f < c.Minimum.Number {
		return false
	}
	return inEnum(c.Enum, func(l schema.Literal) bool { return l.IsNumber() && l.Number == f })
}

func inEnum(enum []schema.Literal, match func(schema.Literal) bool) bool {
	if len(enum) == 0 {
		return true
	}
	for _, l := range enum {
		if match(l) {
			return true
		}
	}
	return false
}

// Serialize converts v into a JSON-like tree keyed by the original property names.
// Sequences are always written, optional members only when present.
func (in *Interpreter) Serialize(v *Object) map[string]any {
	out := map[string]any{}
	if v == nil || v.decl == nil {
		return out
	}

	for _, m := range v.decl.Members {
		val, present := v.Fields[m.Name]
		switch {
		case m.IsSequence():
			items, _ := val.([]any)
			arr := make([]any, 0, len(items))
			for _, item := range items {
				arr = append(arr, in.serializeValue(item))
			}
			out[m.SchemaName] = arr
		case present:
			out[m.SchemaName] = in.serializeValue(val)
		}
	}
	return out
}

func (in *Interpreter) serializeValue(val any) any {
	if o, ok := val.(*Object); ok {
		return in.Serialize(o)
	}
	return val
}

// Deserialize decodes raw into an instance of typeName. A missing required key, a
// value of the wrong type or a failing nested decode fails the whole call.
func (in *Interpreter) Deserialize(typeName string, raw any) (*Object, bool) {
	decl, err := in.Lookup(typeName)
	if err != nil {
		return nil, false
	}
	return in.decode(decl, raw)
}

// DeserializeString parses text as JSON and delegates to Deserialize.
func (in *Interpreter) DeserializeString(typeName, text string) (*Object, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return in.Deserialize(typeName, raw)
}

func (in *Interpreter) decode(decl *ir.Object, raw any) (*Object, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}

	out := newObject(decl)
	for _, member := range decl.Members {
		val, present := m[member.SchemaName]
		switch {
		case !present && member.Required:
			return nil, false
		case !present:
			// Absent optionals stay unset and absent sequences stay empty.
		case member.IsSequence():
			items, ok := val.([]any)
			if !ok {
				return nil, false
			}
			decoded := make([]any, 0, len(items))
			for _, item := range items {
				d, ok := in.decodeValue(decl, member.Elem(), item)
				if !ok {
					return nil, false
				}
				decoded = append(decoded, d)
			}
			out.Fields[member.Name] = decoded
		default:
			d, ok := in.decodeValue(decl, member.Value(), val)
			if !ok {
				return nil, false
			}
			out.Fields[member.Name] = d
		}
	}
	return out, true
}

func (in *Interpreter) decodeValue(owner *ir.Object, t ir.TypeRef, val any) (any, bool) {
	switch ir.ScalarKind(t) {
	case schema.KindString:
		s, ok := val.(string)
		return s, ok
	case schema.KindInteger:
		return toInt64(val)
	case schema.KindNumber:
		return toFloat64(val)
	case schema.KindBoolean:
		b, ok := val.(bool)
		return b, ok
	case schema.KindObject:
		n, ok := t.(ir.Named)
		if !ok {
			return nil, false
		}
		decl, ok := in.objectOf(owner, n)
		if !ok {
			return nil, false
		}
		return in.decode(decl, val)
	default:
		return nil, false
	}
}

func toInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func toFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
