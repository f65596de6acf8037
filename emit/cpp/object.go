package cpp

import (
	"fmt"
	"strings"

	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// access spells a member for reading: the value itself and a prefix for calling methods.
type access struct {
	value  string
	method string
}

func valueAccess(name string) access    { return access{value: name, method: name + "."} }
func optionalAccess(name string) access { return access{value: "*" + name, method: name + "->"} }

func writeStruct(w *writer, obj *ir.Object) {
	w.open("struct %s {", obj.Name)
	w.line("using Ptr = std::shared_ptr<%s>;", obj.Name)
	w.line("using ConstPtr = std::shared_ptr<const %s>;", obj.Name)

	for _, nested := range obj.Nested {
		w.blank()
		writeStruct(w, nested)
	}

	names := memberNames(obj.Members)
	if len(obj.Members) > 0 {
		w.blank()
	}
	for i, m := range obj.Members {
		w.line("%s %s;", typeName(m.Type), names[i])
	}

	if countsCodePoints(obj) {
		w.blank()
		writeCodePoints(w)
	}

	w.blank()
	writeIsValid(w, obj, names)
	w.blank()
	writeToJSON(w, obj, names)
	w.blank()
	writeDump(w)
	w.blank()
	writeFromJSON(w, obj, names)
	w.blank()
	writeFromString(w, obj)
	w.close("};")
}

func countsCodePoints(obj *ir.Object) bool {
	for _, m := range obj.Members {
		if ir.ScalarKind(m.Type) == schema.KindString && (m.Constraints.MinLength != nil || m.Constraints.MaxLength != nil) {
			return true
		}
	}
	return false
}

// writeCodePoints declares a helper measuring UTF-8 strings in code points, the unit
// minLength and maxLength are expressed in.
func writeCodePoints(w *writer) {
	w.open("static std::size_t codePoints(const std::string& s) {")
	w.line("std::size_t n = 0;")
	w.open("for (unsigned char c: s) {")
	w.open("if ((c & 0xC0) != 0x80) {")
	w.line("++n;")
	w.close("}")
	w.close("}")
	w.line("return n;")
	w.close("}")
}

func writeIsValid(w *writer, obj *ir.Object, names []string) {
	w.open("bool isValid() const {")
	for i, m := range obj.Members {
		name := names[i]
		kind := ir.ScalarKind(m.Type)
		switch {
		case m.IsSequence():
			checks := &writer{indent: w.indent + 1}
			writeChecks(checks, kind, m.Constraints, valueAccess("item"))
			if len(checks.lines) == 0 {
				continue
			}
			w.open("for (const auto& item: %s) {", name)
			w.lines = append(w.lines, checks.lines...)
			w.close("}")
		case m.IsOptional():
			checks := &writer{indent: w.indent + 1}
			writeChecks(checks, kind, m.Constraints, optionalAccess(name))
			if len(checks.lines) == 0 {
				continue
			}
			w.open("if (%s) {", name)
			w.lines = append(w.lines, checks.lines...)
			w.close("}")
		default:
			writeChecks(w, kind, m.Constraints, valueAccess(name))
		}
	}
	w.line("return true;")
	w.close("}")
}

func writeChecks(w *writer, kind schema.Kind, c ir.Constraints, a access) {
	switch kind {
	case schema.KindString:
		if c.MaxLength != nil {
			w.returnFalseIf(fmt.Sprintf("codePoints(%s) > %d", a.value, *c.MaxLength))
		}
		if c.MinLength != nil {
			w.returnFalseIf(fmt.Sprintf("codePoints(%s) < %d", a.value, *c.MinLength))
		}
		if len(c.Enum) > 0 {
			w.returnFalseIf(enumCondition(a.value, c.Enum, func(l schema.Literal) (string, bool) {
				return quote(l.Raw), l.IsString
			}))
		}
	case schema.KindInteger, schema.KindNumber:
		if c.Maximum != nil {
			w.returnFalseIf(fmt.Sprintf("%s > %s", a.value, number(*c.Maximum)))
		}
		if c.Minimum != nil {
			w.returnFalseIf(fmt.Sprintf("%s < %s", a.value, number(*c.Minimum)))
		}
		if len(c.Enum) > 0 {
			w.returnFalseIf(enumCondition(a.value, c.Enum, func(l schema.Literal) (string, bool) {
				return number(l), l.IsNumber()
			}))
		}
	case schema.KindObject:
		w.returnFalseIf(fmt.Sprintf("!%sisValid()", a.method))
	}
}

// enumCondition builds a condition that holds when value equals none of the literals
// of the right kind. It is "true" when no literal can match.
func enumCondition(value string, enum []schema.Literal, render func(schema.Literal) (string, bool)) string {
	var terms []string
	for _, l := range enum {
		lit, ok := render(l)
		if !ok {
			continue
		}
		terms = append(terms, fmt.Sprintf("%s != %s", value, lit))
	}
	if len(terms) == 0 {
		return "true"
	}
	return strings.Join(terms, " && ")
}

func writeToJSON(w *writer, obj *ir.Object, names []string) {
	w.open("json toJson() const {")
	w.line("json j = json::object();")
	for i, m := range obj.Members {
		name := names[i]
		key := quote(m.SchemaName)
		object := ir.ScalarKind(m.Type) == schema.KindObject
		switch {
		case m.IsSequence():
			w.line("json _%s = json::array();", name)
			w.open("for (const auto& item: %s) {", name)
			if object {
				w.line("_%s.push_back(item.toJson());", name)
			} else {
				w.line("_%s.push_back(item);", name)
			}
			w.close("}")
			w.line("j[%s] = _%s;", key, name)
		case m.IsOptional():
			w.open("if (%s) {", name)
			if object {
				w.line("j[%s] = %s->toJson();", key, name)
			} else {
				w.line("j[%s] = *%s;", key, name)
			}
			w.close("}")
		default:
			if object {
				w.line("j[%s] = %s.toJson();", key, name)
			} else {
				w.line("j[%s] = %s;", key, name)
			}
		}
	}
	w.line("return j;")
	w.close("}")
}

func writeDump(w *writer) {
	w.open("std::string dump(bool formatted = false) const {")
	w.line("auto j = toJson();")
	w.open("if (formatted) {")
	w.line("return j.dump(4);")
	w.close("}")
	w.line("return j.dump();")
	w.close("}")
}

func writeFromJSON(w *writer, obj *ir.Object, names []string) {
	w.open("static std::optional<%s> fromJson(const json& j) {", obj.Name)
	w.returnEmptyIf("!j.is_object()")
	w.line("%s _out;", obj.Name)

	for i, m := range obj.Members {
		name := names[i]
		key := quote(m.SchemaName)

		if m.Required {
			w.returnEmptyIf(fmt.Sprintf("!j.contains(%s)", key))
			w.open("{")
		} else {
			w.open("if (j.contains(%s)) {", key)
		}
		w.line("const auto& _v = j.at(%s);", key)

		if m.IsSequence() {
			w.returnEmptyIf("!_v.is_array()")
			w.open("for (const auto& item: _v) {")
			writeDecode(w, m.Elem(), "item", func(expr string) string {
				return fmt.Sprintf("_out.%s.push_back(%s);", name, expr)
			})
			w.close("}")
		} else {
			writeDecode(w, m.Value(), "_v", func(expr string) string {
				return fmt.Sprintf("_out.%s = %s;", name, expr)
			})
		}
		w.close("}")
	}

	w.line("return _out;")
	w.close("}")
}

// writeDecode checks that the JSON value src holds t and stores it with assign.
func writeDecode(w *writer, t ir.TypeRef, src string, assign func(expr string) string) {
	kind := ir.ScalarKind(t)
	if kind == schema.KindObject {
		local := "_" + strings.TrimPrefix(src, "_") + "_obj"
		w.line("auto %s = %s::fromJson(%s);", local, typeName(t), src)
		w.returnEmptyIf("!" + local)
		w.line("%s", assign("*" + local))
		return
	}

	cond := fmt.Sprintf("!%s.%s()", src, jsonTypeCheck(kind))
	if kind == schema.KindInteger {
		cond += fmt.Sprintf(" || (%s.is_number_unsigned() && %s.get<std::uint64_t>() > static_cast<std::uint64_t>(INT64_MAX))", src, src)
	}
	w.returnEmptyIf(cond)
	w.line("%s", assign(fmt.Sprintf("%s.get<%s>()", src, typeName(t))))
}

func jsonTypeCheck(k schema.Kind) string {
	switch k {
	case schema.KindString:
		return "is_string"
	case schema.KindInteger:
		return "is_number_integer"
	case schema.KindNumber:
		return "is_number"
	default:
		return "is_boolean"
	}
}

func writeFromString(w *writer, obj *ir.Object) {
	w.open("static std::optional<%s> fromJson(const std::string& s) {", obj.Name)
	w.line("auto j = json::parse(s, nullptr, false);")
	w.returnEmptyIf("j.is_discarded()")
	w.line("return fromJson(j);")
	w.close("}")
}
