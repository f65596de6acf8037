package cpp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

var keywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {}, "bitand": {},
	"bitor": {}, "bool": {}, "break": {}, "case": {}, "catch": {}, "char": {}, "char8_t": {},
	"char16_t": {}, "char32_t": {}, "class": {}, "compl": {}, "concept": {}, "const": {},
	"consteval": {}, "constexpr": {}, "constinit": {}, "const_cast": {}, "continue": {},
	"co_await": {}, "co_return": {}, "co_yield": {}, "decltype": {}, "default": {}, "delete": {},
	"do": {}, "double": {}, "dynamic_cast": {}, "else": {}, "enum": {}, "explicit": {},
	"export": {}, "extern": {}, "false": {}, "float": {}, "for": {}, "friend": {}, "goto": {},
	"if": {}, "inline": {}, "int": {}, "long": {}, "mutable": {}, "namespace": {}, "new": {},
	"noexcept": {}, "not": {}, "not_eq": {}, "nullptr": {}, "operator": {}, "or": {},
	"or_eq": {}, "private": {}, "protected": {}, "public": {}, "register": {},
	"reinterpret_cast": {}, "requires": {}, "return": {}, "short": {}, "signed": {},
	"sizeof": {}, "static": {}, "static_assert": {}, "static_cast": {}, "struct": {},
	"switch": {}, "template": {}, "this": {}, "thread_local": {}, "throw": {}, "true": {},
	"try": {}, "typedef": {}, "typeid": {}, "typename": {}, "union": {}, "unsigned": {},
	"using": {}, "virtual": {}, "void": {}, "volatile": {}, "wchar_t": {}, "while": {},
	"xor": {}, "xor_eq": {},
}

// reserved are names used by the generated methods and their locals.
var reserved = map[string]struct{}{
	"j": {}, "s": {}, "item": {}, "formatted": {}, "json": {}, "dump": {}, "std": {},
}

// memberName makes a normalized member name usable as a C++ identifier.
func memberName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	if _, ok := keywords[name]; ok {
		return name + "_"
	}
	if _, ok := reserved[name]; ok {
		return name + "_"
	}
	return name
}

// memberNames returns the C++ identifier of every member. Names that still clash after
// cleaning, such as "int" and "int_", get a numeric suffix.
func memberNames(ms []ir.Member) []string {
	used := map[string]int{}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		name := memberName(m.Name)
		if n := used[name]; n > 0 {
			used[name]++
			name = fmt.Sprintf("%s%d", name, n+1)
		} else {
			used[name] = 1
		}
		out = append(out, name)
	}
	return out
}

// namespace turns an output prefix such as "acme/events" into "acme::events".
func namespace(prefix string) string {
	var parts []string
	for _, p := range strings.Split(prefix, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, memberName(p))
	}
	return strings.Join(parts, "::")
}

func primitiveType(k schema.Kind) string {
	switch k {
	case schema.KindString:
		return "std::string"
	case schema.KindInteger:
		return "std::int64_t"
	case schema.KindNumber:
		return "double"
	case schema.KindBoolean:
		return "bool"
	default:
		return "void"
	}
}

func typeName(t ir.TypeRef) string {
	switch v := t.(type) {
	case ir.Primitive:
		return primitiveType(v.Type)
	case ir.Named:
		return v.Name
	case ir.Sequence:
		return fmt.Sprintf("std::vector<%s>", typeName(v.Elem))
	case ir.Optional:
		return fmt.Sprintf("std::optional<%s>", typeName(v.Elem))
	default:
		return "void"
	}
}

// quote renders s as a C++ string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range []byte(s) {
		switch b {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if b < 0x20 || b == 0x7f {
				// Octal escapes end after three digits, hex escapes do not.
				fmt.Fprintf(&sb, `\%03o`, b)
				continue
			}
			sb.WriteByte(b)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// number renders a numeric literal, keeping the document spelling when C++ accepts it.
func number(l schema.Literal) string {
	if _, err := strconv.ParseFloat(l.Raw, 64); err == nil && !strings.ContainsAny(l.Raw, "_xXoObB") {
		return l.Raw
	}
	return strconv.FormatFloat(l.Number, 'g', -1, 64)
}
