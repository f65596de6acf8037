package cpp_test

import (
	"strings"
	"testing"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/emit/cpp"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `
asyncapi: 2.6.0
components:
  schemas:
    Person:
      type: object
      description: A person with a name and some tags.
      required: [name, address]
      properties:
        name:
          type: string
          minLength: 1
          maxLength: 32
        nickName:
          type: string
          enum: [bob, "say \"hi\""]
        age:
          type: integer
          minimum: 0
          maximum: 150
        tags:
          type: array
          items:
            type: string
            maxLength: 8
        address:
          type: object
          properties:
            street:
              type: string
        pets:
          type: array
          items:
            type: object
            required: [kind]
            properties:
              kind:
                type: string
        owner:
          $ref: '#/components/schemas/owner_id'
        class:
          type: boolean
    owner_id:
      type: string
      minLength: 3
  messages:
    person_joined:
      summary: A person joined.
      schema:
        $ref: '#/components/schemas/Person'
`

func decls(t *testing.T, src string) map[string]ir.Decl {
	t.Helper()

	doc, _, err := asyncapi.Unmarshal(t.Context(), strings.NewReader(src))
	require.NoError(t, err)

	r := resolver.New()
	require.NoError(t, resolver.Populate(r, doc.Entries()))
	b, err := ir.NewBuilder(r)
	require.NoError(t, err)

	out := map[string]ir.Decl{}
	for _, e := range doc.Entries() {
		decl, _ := b.Build(e)
		require.NotNil(t, decl, e.Key)
		out[decl.TypeName()] = decl
	}
	return out
}

func emitUnit(t *testing.T, decl ir.Decl, opts emit.Options) (*emit.Unit, string) {
	t.Helper()

	u, err := cpp.New().EmitUnit(decl, opts)
	require.NoError(t, err)
	return u, string(u.Content)
}

func TestEmitter_Registered_Success(t *testing.T) {
	t.Parallel()

	e, err := emit.Get(cpp.TargetName)
	require.NoError(t, err)
	assert.Equal(t, ".h", e.FileExtension())
}

func TestEmitter_EmitUnit_Object_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, document)
	u, src := emitUnit(t, d["Person"], emit.Options{Prefix: "acme/events"})

	assert.Equal(t, "Person", u.Name)
	assert.Equal(t, emit.UnitObject, u.Kind)
	assert.Equal(t, "acme/events/Person.h", u.Path)
	assert.Equal(t, []string{
		"#include <acme/events/OwnerId.h>",
		"#include <cstdint>",
		"#include <memory>",
		"#include <nlohmann/json.hpp>",
		"#include <optional>",
		"#include <string>",
		"#include <vector>",
	}, u.Deps)

	assert.True(t, strings.HasPrefix(src, "#pragma once\n\n/* This file was auto-generated. */\n\n#include <acme/events/OwnerId.h>\n"))
	for _, fragment := range []string{
		"using json = nlohmann::json;\n\nnamespace acme::events {\n",
		"/**\n * A person with a name and some tags.\n */\nstruct Person {",
		"  using Ptr = std::shared_ptr<Person>;",
		"\n  struct Address {",
		"\n  struct PetsItem {",
		"  std::string name;\n",
		"  std::optional<std::string> nick_name;",
		"  std::optional<std::int64_t> age;",
		"  std::vector<std::string> tags;",
		"  Address address;",
		"  std::vector<PetsItem> pets;",
		"  std::optional<OwnerId> owner;",
		"  std::optional<bool> class_;",
		"static std::size_t codePoints(const std::string& s) {",
		"if (codePoints(name) > 32) {",
		"if (codePoints(name) < 1) {",
		`if (*nick_name != "bob" && *nick_name != "say \"hi\"") {`,
		"if (*age > 150) {",
		"if (*age < 0) {",
		"for (const auto& item: tags) {\n      if (codePoints(item) > 8) {",
		"if (!address.isValid()) {",
		"for (const auto& item: pets) {\n      if (!item.isValid()) {",
		"if (codePoints(*owner) < 3) {",
		`j["nickName"] = *nick_name;`,
		`j["address"] = address.toJson();`,
		"_pets.push_back(item.toJson());",
		`j["class"] = *class_;`,
		"std::string dump(bool formatted = false) const {",
		"return j.dump(4);",
		"static std::optional<Person> fromJson(const json& j) {",
		"if (!j.contains(\"name\")) {\n      return {};\n    }",
		"if (j.contains(\"age\")) {",
		"if (!_v.is_number_integer() || (_v.is_number_unsigned() && _v.get<std::uint64_t>() > static_cast<std::uint64_t>(INT64_MAX))) {",
		"_out.age = _v.get<std::int64_t>();",
		"auto _v_obj = Address::fromJson(_v);",
		"auto _item_obj = PetsItem::fromJson(item);",
		"_out.tags.push_back(item.get<std::string>());",
		"_out.owner = _v.get<OwnerId>();",
		"static std::optional<Person> fromJson(const std::string& s) {",
		"auto j = json::parse(s, nullptr, false);",
		"}  // namespace acme::events\n",
	} {
		assert.Contains(t, src, fragment)
	}
}

func TestEmitter_EmitUnit_MemberOrder_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, document)
	_, src := emitUnit(t, d["Person"], emit.Options{})

	// Nested structs come first, so the last occurrence of each method belongs to Person.
	for _, section := range []string{"bool isValid() const {", "json toJson() const {", "static std::optional<Person> fromJson(const json& j) {"} {
		body := src[strings.LastIndex(src, section):]
		last := -1
		for _, key := range []string{"name", "nick_name", "age", "tags", "address", "pets", "owner"} {
			i := strings.Index(body, key)
			require.GreaterOrEqual(t, i, 0, "%s in %s", key, section)
			assert.Greater(t, i, last, "%s out of order in %s", key, section)
			last = i
		}
	}
}

func TestEmitter_EmitUnit_Alias_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, document)

	u, src := emitUnit(t, d["OwnerId"], emit.Options{Prefix: "acme"})
	assert.Equal(t, emit.UnitAlias, u.Kind)
	assert.Equal(t, []string{"#include <nlohmann/json.hpp>", "#include <string>"}, u.Deps)
	assert.Contains(t, src, "typedef std::string OwnerId;")

	u, src = emitUnit(t, d["PersonJoined"], emit.Options{Prefix: "acme"})
	assert.Equal(t, []string{"#include <acme/Person.h>", "#include <nlohmann/json.hpp>"}, u.Deps)
	assert.Contains(t, src, "/**\n * A person joined.\n */\ntypedef Person PersonJoined;")
}

func TestEmitter_EmitUnit_NoPrefix_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, document)
	u, src := emitUnit(t, d["Person"], emit.Options{})

	assert.Equal(t, "Person.h", u.Path)
	assert.Contains(t, u.Deps, "#include <OwnerId.h>")
	assert.NotContains(t, src, "namespace")
}

func TestEmitter_EmitUnit_WrapsDoc_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, `
components:
  schemas:
    Note:
      type: string
      summary: First line.
      description: A much longer description that keeps going well past the configured column.
`)
	_, src := emitUnit(t, d["Note"], emit.Options{WrapWidth: 30})
	assert.Contains(t, src, "/**\n * First line. A much longer\n * description that keeps going\n")
}

func TestEmitter_EmitUnit_Empty_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, `
components:
  schemas:
    Ping:
      type: object
`)
	_, src := emitUnit(t, d["Ping"], emit.Options{})
	assert.Contains(t, src, "json j = json::object();")
	assert.Contains(t, src, "bool isValid() const {\n    return true;\n  }")
	assert.NotContains(t, src, "codePoints")
}

func TestEmitter_EmitUnit_IntegerAlias_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, `
components:
  schemas:
    Count:
      type: integer
`)
	u, src := emitUnit(t, d["Count"], emit.Options{})
	assert.Equal(t, []string{"#include <cstdint>", "#include <nlohmann/json.hpp>"}, u.Deps)
	assert.Contains(t, src, "typedef std::int64_t Count;")
}

func TestEmitter_EmitUnit_Identifiers_Success(t *testing.T) {
	t.Parallel()

	d := decls(t, `
components:
  schemas:
    Flags:
      type: object
      required: [int, int_, mode]
      properties:
        int:
          type: boolean
        int_:
          type: boolean
        mode:
          type: string
          enum: ["\x01a", "plain"]
`)
	_, src := emitUnit(t, d["Flags"], emit.Options{})
	for _, fragment := range []string{
		"  bool int_;\n  bool int_2;\n",
		`j["int"] = int_;`,
		`j["int_"] = int_2;`,
		`_out.int_2 = _v.get<bool>();`,
		`if (mode != "\001a" && mode != "plain") {`,
	} {
		assert.Contains(t, src, fragment)
	}
	assert.NotContains(t, src, "cstdint")
}

func TestEmitter_EmitUmbrella_Success(t *testing.T) {
	t.Parallel()

	e := cpp.New()
	units := []*emit.Unit{
		{Name: "Zeta", Kind: emit.UnitObject},
		{Name: "Alpha", Kind: emit.UnitAlias},
		{Name: "Alpha", Kind: emit.UnitAlias},
	}
	u, err := e.EmitUmbrella(units, emit.Options{Prefix: "acme"})
	require.NoError(t, err)

	assert.Equal(t, emit.UnitUmbrella, u.Kind)
	assert.Equal(t, "acme/messages.h", u.Path)
	assert.Equal(t, "#pragma once\n\n/* This file was auto-generated. */\n\n#include <acme/Alpha.h>\n#include <acme/Zeta.h>\n", string(u.Content))
	assert.Equal(t, 6, u.Lines())
}
