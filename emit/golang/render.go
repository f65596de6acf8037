package golang

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// methodNames are taken by the generated methods and cannot be used for fields.
var methodNames = map[string]struct{}{
	"Validate":  {},
	"Serialize": {},
	"String":    {},
}

type member struct {
	ir.Member
	field string
}

// access spells a field for reading: its value and a receiver for method calls.
type access struct {
	value  string
	method string
}

type code struct {
	sb     strings.Builder
	indent int
}

func (c *code) line(format string, args ...any) {
	c.sb.WriteString(strings.Repeat("\t", c.indent))
	if len(args) > 0 {
		fmt.Fprintf(&c.sb, format, args...)
	} else {
		c.sb.WriteString(format)
	}
	c.sb.WriteByte('\n')
}

func (c *code) open(format string, args ...any) {
	c.line(format, args...)
	c.indent++
}

func (c *code) close() {
	c.indent--
	c.line("}")
}

func (c *code) String() string {
	return c.sb.String()
}

func renderType(obj *ir.Object, name string, imports emit.Deps) *typeData {
	members := fieldNames(obj.Members)
	t := &typeData{Name: name}
	for _, m := range members {
		t.Fields = append(t.Fields, fieldData{Name: m.field, Type: goType(m.Type, name), Tag: jsonTag(m.Member)})
	}
	t.Validate = renderValidate(members, imports)
	t.Serialize = renderSerialize(members)
	t.Deserialize = renderDeserialize(members, name)
	return t
}

// fieldNames assigns every member a unique exported field name.
func fieldNames(ms []ir.Member) []member {
	used := map[string]int{}
	out := make([]member, 0, len(ms))
	for _, m := range ms {
		field := goName(m.Name)
		if field == "" {
			field = "Field"
		}
		if _, ok := methodNames[field]; ok {
			field += "_"
		}
		if n := used[field]; n > 0 {
			used[field]++
			field = fmt.Sprintf("%s%d", field, n+1)
		} else {
			used[field] = 1
		}
		out = append(out, member{Member: m, field: field})
	}
	return out
}

func goPrimitive(k schema.Kind) string {
	switch k {
	case schema.KindString:
		return "string"
	case schema.KindInteger:
		return "int64"
	case schema.KindNumber:
		return "float64"
	default:
		return "bool"
	}
}

// goType renders t. Synthesized names are qualified with owner, the Go name of the
// object declaring them.
func goType(t ir.TypeRef, owner string) string {
	switch v := t.(type) {
	case ir.Primitive:
		return goPrimitive(v.Type)
	case ir.Named:
		if v.Synthesized {
			return owner + goName(v.Name)
		}
		return goName(v.Name)
	case ir.Sequence:
		return "[]" + goType(v.Elem, owner)
	case ir.Optional:
		return "*" + goType(v.Elem, owner)
	default:
		return "any"
	}
}

// decoderName is the function decoding a value of object type n.
func decoderName(n ir.Named, owner string) string {
	if n.Synthesized {
		return "Deserialize" + owner + goName(n.Name)
	}
	return "Deserialize" + goName(n.Target)
}

func jsonTag(m ir.Member) string {
	if strings.ContainsAny(m.SchemaName, "\"`,\\") || m.SchemaName == "" {
		return ""
	}
	if m.IsOptional() {
		return fmt.Sprintf(`json:"%s,omitempty"`, m.SchemaName)
	}
	return fmt.Sprintf(`json:"%s"`, m.SchemaName)
}

func renderValidate(members []member, imports emit.Deps) string {
	c := &code{indent: 1}
	for _, m := range members {
		kind := ir.ScalarKind(m.Type)
		field := "v." + m.field
		switch {
		case m.IsSequence():
			checks := &code{indent: c.indent + 1}
			writeChecks(checks, kind, m.Constraints, access{value: "item", method: "item"}, imports)
			if checks.sb.Len() == 0 {
				continue
			}
			c.open("for _, item := range %s {", field)
			c.sb.WriteString(checks.String())
			c.close()
		case m.IsOptional():
			checks := &code{indent: c.indent + 1}
			writeChecks(checks, kind, m.Constraints, access{value: "*" + field, method: field}, imports)
			if checks.sb.Len() == 0 {
				continue
			}
			c.open("if %s != nil {", field)
			c.sb.WriteString(checks.String())
			c.close()
		default:
			writeChecks(c, kind, m.Constraints, access{value: field, method: field}, imports)
		}
	}
	return c.String()
}

func writeChecks(c *code, kind schema.Kind, cs ir.Constraints, a access, imports emit.Deps) {
	fail := func(cond string) {
		c.open("if %s {", cond)
		c.line("return false")
		c.close()
	}

	switch kind {
	case schema.KindString:
		if cs.MaxLength != nil {
			imports.Add("unicode/utf8")
			fail(fmt.Sprintf("utf8.RuneCountInString(%s) > %d", a.value, *cs.MaxLength))
		}
		if cs.MinLength != nil {
			imports.Add("unicode/utf8")
			fail(fmt.Sprintf("utf8.RuneCountInString(%s) < %d", a.value, *cs.MinLength))
		}
		if len(cs.Enum) > 0 {
			fail(enumCondition(a.value, cs.Enum, func(l schema.Literal) (string, bool) {
				return strconv.Quote(l.Raw), l.IsString
			}))
		}
	case schema.KindInteger:
		if cs.Maximum != nil {
			fail(integerBound(a.value, ">", *cs.Maximum))
		}
		if cs.Minimum != nil {
			fail(integerBound(a.value, "<", *cs.Minimum))
		}
		if len(cs.Enum) > 0 {
			fail(enumCondition(a.value, cs.Enum, func(l schema.Literal) (string, bool) {
				lit, ok := integerLiteral(l)
				return lit, ok
			}))
		}
	case schema.KindNumber:
		if cs.Maximum != nil {
			fail(fmt.Sprintf("%s > %s", a.value, floatLiteral(*cs.Maximum)))
		}
		if cs.Minimum != nil {
			fail(fmt.Sprintf("%s < %s", a.value, floatLiteral(*cs.Minimum)))
		}
		if len(cs.Enum) > 0 {
			fail(enumCondition(a.value, cs.Enum, func(l schema.Literal) (string, bool) {
				return floatLiteral(l), l.IsNumber()
			}))
		}
	case schema.KindObject:
		fail(fmt.Sprintf("!%s.Validate()", a.method))
	}
}

func enumCondition(value string, enum []schema.Literal, render func(schema.Literal) (string, bool)) string {
	var terms []string
	for _, l := range enum {
		if lit, ok := render(l); ok {
			terms = append(terms, fmt.Sprintf("%s != %s", value, lit))
		}
	}
	if len(terms) == 0 {
		return "true"
	}
	return strings.Join(terms, " && ")
}

// integerLiteral renders l when it is a whole number an int64 can hold.
func integerLiteral(l schema.Literal) (string, bool) {
	if !l.IsNumber() || l.Number != math.Trunc(l.Number) || l.Number < math.MinInt64 || l.Number >= math.MaxInt64 {
		return "", false
	}
	return strconv.FormatInt(int64(l.Number), 10), true
}

func integerBound(value, op string, l schema.Literal) string {
	if lit, ok := integerLiteral(l); ok {
		return fmt.Sprintf("%s %s %s", value, op, lit)
	}
	return fmt.Sprintf("float64(%s) %s %s", value, op, floatLiteral(l))
}

func floatLiteral(l schema.Literal) string {
	s := strconv.FormatFloat(l.Number, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func renderSerialize(members []member) string {
	c := &code{indent: 1}
	for _, m := range members {
		key := strconv.Quote(m.SchemaName)
		field := "v." + m.field
		object := ir.ScalarKind(m.Type) == schema.KindObject
		switch {
		case m.IsSequence():
			c.open("{")
			c.line("items := make([]any, 0, len(%s))", field)
			c.open("for _, item := range %s {", field)
			if object {
				c.line("items = append(items, item.Serialize())")
			} else {
				c.line("items = append(items, item)")
			}
			c.close()
			c.line("out[%s] = items", key)
			c.close()
		case m.IsOptional():
			c.open("if %s != nil {", field)
			if object {
				c.line("out[%s] = %s.Serialize()", key, field)
			} else {
				c.line("out[%s] = *%s", key, field)
			}
			c.close()
		default:
			if object {
				c.line("out[%s] = %s.Serialize()", key, field)
			} else {
				c.line("out[%s] = %s", key, field)
			}
		}
	}
	return c.String()
}

func renderDeserialize(members []member, owner string) string {
	c := &code{indent: 1}
	zero := owner + "{}"
	for _, m := range members {
		if m.IsSequence() {
			c.line("out.%s = %s{}", m.field, goType(m.Value(), owner))
		}
	}

	for _, m := range members {
		key := strconv.Quote(m.SchemaName)
		if m.Required {
			c.open("{")
			c.line("val, ok := m[%s]", key)
			c.open("if !ok {")
			c.line("return %s, false", zero)
			c.close()
		} else {
			c.open("if val, ok := m[%s]; ok {", key)
		}

		target := "out." + m.field
		if m.IsSequence() {
			c.line("items, ok := asArray(val)")
			c.open("if !ok {")
			c.line("return %s, false", zero)
			c.close()
			c.line("%s = make(%s, 0, len(items))", target, goType(m.Value(), owner))
			c.open("for _, item := range items {")
			writeDecode(c, m.Elem(), "item", owner, zero)
			c.line("%s = append(%s, x)", target, target)
			c.close()
		} else {
			writeDecode(c, m.Value(), "val", owner, zero)
			if m.IsOptional() {
				c.line("%s = &x", target)
			} else {
				c.line("%s = x", target)
			}
		}
		c.close()
	}
	return c.String()
}

// writeDecode declares x holding src decoded as t, returning the zero value on failure.
func writeDecode(c *code, t ir.TypeRef, src, owner, zero string) {
	switch ir.ScalarKind(t) {
	case schema.KindString:
		c.line("x, ok := asString(%s)", src)
	case schema.KindInteger:
		c.line("x, ok := asInt(%s)", src)
	case schema.KindNumber:
		c.line("x, ok := asFloat(%s)", src)
	case schema.KindBoolean:
		c.line("x, ok := asBool(%s)", src)
	default:
		n, _ := t.(ir.Named)
		c.line("x, ok := %s(%s)", decoderName(n, owner), src)
	}
	c.open("if !ok {")
	c.line("return %s, false", zero)
	c.close()
}
