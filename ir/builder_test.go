package ir_test

import (
	"strings"
	"testing"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc     *asyncapi.Document
	builder *ir.Builder
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()

	doc, _, err := asyncapi.Unmarshal(t.Context(), strings.NewReader(src))
	require.NoError(t, err)

	r := resolver.New()
	require.NoError(t, resolver.Populate(r, doc.Entries()))

	b, err := ir.NewBuilder(r)
	require.NoError(t, err)
	return &fixture{doc: doc, builder: b}
}

func (f *fixture) build(t *testing.T, key string) (ir.Decl, []error) {
	t.Helper()

	entry, ok := f.doc.Entry(key)
	require.True(t, ok, key)
	return f.builder.Build(entry)
}

func (f *fixture) object(t *testing.T, key string) *ir.Object {
	t.Helper()

	decl, diags := f.build(t, key)
	require.Empty(t, diags)
	obj, ok := decl.(*ir.Object)
	require.True(t, ok, "%s should lower to an object", key)
	return obj
}

func memberNames(obj *ir.Object) []string {
	names := make([]string, 0, len(obj.Members))
	for _, m := range obj.Members {
		names = append(names, m.Name)
	}
	return names
}

func rules(diags []error) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		var vErr *validation.Error
		if errors.As(d, &vErr) {
			out = append(out, vErr.Rule+" "+vErr.Location())
		}
	}
	return out
}

const person = `
components:
  schemas:
    Person:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 1
        tags:
          type: array
          items:
            type: string
`

func TestBuilder_Build_ConcreteScenario_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, person)
	obj := f.object(t, "Person")

	assert.Equal(t, "Person", obj.TypeName())
	assert.Equal(t, "Person", obj.EntryKey)
	require.Len(t, obj.Members, 2)

	name := obj.Members[0]
	assert.Equal(t, "name", name.SchemaName)
	assert.True(t, name.Required)
	assert.False(t, name.IsOptional())
	assert.Equal(t, ir.Primitive{Type: schema.KindString}, name.Type)
	require.NotNil(t, name.Constraints.MinLength)
	assert.Equal(t, 1, *name.Constraints.MinLength)

	tags := obj.Members[1]
	assert.False(t, tags.Required)
	assert.False(t, tags.IsOptional(), "sequences are never optional")
	assert.True(t, tags.IsSequence())
	assert.Equal(t, ir.Sequence{Elem: ir.Primitive{Type: schema.KindString}}, tags.Type)
	assert.True(t, tags.Constraints.IsZero())
	assert.Empty(t, obj.Refs())
}

const mapping = `
components:
  schemas:
    Reading:
      type: object
      required: [sensorId, location, level]
      properties:
        sensorId:
          $ref: '#/components/schemas/sensor_id'
        level:
          type: integer
          minimum: 0
          maximum: 10
          minLength: 4
        ratio:
          type: number
        active:
          type: boolean
        location:
          type: object
          required: [lat]
          properties:
            lat:
              type: number
            lon:
              type: number
        points:
          type: array
          items:
            type: object
            properties:
              x:
                type: integer
        owners:
          type: array
          items:
            $ref: '#/components/schemas/Owner'
        codes:
          type: array
          items:
            $ref: '#/components/schemas/sensor_id'
        owner:
          $ref: '#/components/schemas/OwnerAlias'
    sensor_id:
      type: string
      maxLength: 8
      enum: [a1, b2]
    Owner:
      type: object
      properties:
        email:
          type: string
    OwnerAlias:
      $ref: '#/components/schemas/Owner'
`

func TestBuilder_Build_Mapping_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mapping)
	obj := f.object(t, "Reading")

	assert.Equal(t, []string{"sensor_id", "level", "ratio", "active", "location", "points", "owners", "codes", "owner"}, memberNames(obj))
	assert.Equal(t, []string{"Owner", "OwnerAlias", "SensorId"}, obj.Refs())

	members := map[string]ir.Member{}
	for _, m := range obj.Members {
		members[m.SchemaName] = m
	}

	sensor := members["sensorId"]
	assert.Equal(t, ir.Named{Name: "SensorId", Primitive: schema.KindString}, sensor.Type)
	require.NotNil(t, sensor.Constraints.MaxLength, "constraints are recovered from the component")
	assert.Equal(t, 8, *sensor.Constraints.MaxLength)
	assert.Len(t, sensor.Constraints.Enum, 2)

	level := members["level"]
	assert.Equal(t, ir.Primitive{Type: schema.KindInteger}, level.Type)
	assert.Equal(t, "0", level.Constraints.Minimum.Raw)
	assert.Equal(t, "10", level.Constraints.Maximum.Raw)
	assert.Nil(t, level.Constraints.MinLength, "length constraints do not apply to integers")

	assert.Equal(t, ir.Optional{Elem: ir.Primitive{Type: schema.KindNumber}}, members["ratio"].Type)
	assert.Equal(t, ir.Optional{Elem: ir.Primitive{Type: schema.KindBoolean}}, members["active"].Type)

	assert.Equal(t, ir.Named{Name: "Location", Target: "Location", Synthesized: true}, members["location"].Type)
	assert.Equal(t, ir.Sequence{Elem: ir.Named{Name: "PointsItem", Target: "PointsItem", Synthesized: true}}, members["points"].Type)
	assert.Equal(t, ir.Sequence{Elem: ir.Named{Name: "Owner", Target: "Owner"}}, members["owners"].Type)

	codes := members["codes"]
	assert.Equal(t, ir.Sequence{Elem: ir.Named{Name: "SensorId", Primitive: schema.KindString}}, codes.Type)
	require.NotNil(t, codes.Constraints.MaxLength, "item constraints are recovered from the component")

	assert.Equal(t, ir.Optional{Elem: ir.Named{Name: "OwnerAlias", Target: "Owner"}}, members["owner"].Type)
	assert.Equal(t, schema.KindObject, ir.ScalarKind(members["owner"].Type))

	require.Len(t, obj.Nested, 2)
	location, ok := obj.NestedObject("Location")
	require.True(t, ok)
	assert.Equal(t, []string{"lat", "lon"}, memberNames(location))
	assert.True(t, location.Members[0].Required)
	assert.True(t, location.Members[1].IsOptional())

	item, ok := obj.NestedObject("PointsItem")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, memberNames(item))

	var order []string
	obj.Walk(func(o *ir.Object, path []string) {
		order = append(order, ir.QualifiedName(path))
	})
	assert.Equal(t, []string{"ReadingLocation", "ReadingPointsItem", "Reading"}, order)
}

func TestBuilder_Build_Aliases_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `
components:
  schemas:
    sensor_id:
      type: string
      description: Identifier of a sensor.
    Owner:
      type: object
  messages:
    owner_changed:
      summary: The owner changed.
      schema:
        $ref: '#/components/schemas/Owner'
    level:
      payload:
        type: integer
    lightMeasured:
      summary: Light measured.
      description: Sent by streetlights.
      payload:
        type: object
        properties:
          lumens:
            type: integer
`)

	decl, diags := f.build(t, "sensor_id")
	require.Empty(t, diags)
	alias, ok := decl.(*ir.Alias)
	require.True(t, ok)
	assert.Equal(t, "SensorId", alias.TypeName())
	assert.Equal(t, ir.Primitive{Type: schema.KindString}, alias.Target)
	assert.Equal(t, "Identifier of a sensor.", alias.Doc)
	assert.Empty(t, alias.Refs())

	decl, diags = f.build(t, "owner_changed")
	require.Empty(t, diags)
	alias, ok = decl.(*ir.Alias)
	require.True(t, ok)
	assert.Equal(t, ir.Named{Name: "Owner", Target: "Owner"}, alias.Target)
	assert.Equal(t, []string{"Owner"}, alias.Refs())
	assert.Equal(t, "The owner changed.", alias.Doc)

	decl, diags = f.build(t, "level")
	require.Empty(t, diags)
	alias, ok = decl.(*ir.Alias)
	require.True(t, ok)
	assert.Equal(t, ir.Primitive{Type: schema.KindInteger}, alias.Target)

	obj := f.object(t, "lightMeasured")
	assert.Equal(t, "LightMeasured", obj.Name)
	assert.Equal(t, "Light measured.\nSent by streetlights.", obj.Doc)
	assert.Equal(t, []string{"lumens"}, memberNames(obj))
}

func TestBuilder_Build_BareProperties_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `
components:
  messages:
    Heartbeat:
      summary: Liveness signal.
      note: not a schema
      uptime:
        type: integer
      host:
        type: string
`)

	decl, diags := f.build(t, "Heartbeat")
	obj, ok := decl.(*ir.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"uptime", "host"}, memberNames(obj))
	for _, m := range obj.Members {
		assert.True(t, m.Required, m.Name)
	}
	assert.Equal(t, "Liveness signal.", obj.Doc)
	assert.Equal(t, []string{validation.RuleGenerationSkippedProperty + " Heartbeat.note"}, rules(diags))
}

func TestBuilder_Build_Skipped_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `
components:
  schemas:
    List:
      type: array
      items:
        type: string
    Thing:
      type: object
      properties:
        untyped:
          description: nothing here
        noItems:
          type: array
        matrix:
          type: array
          items:
            type: array
            items:
              type: integer
        dangling:
          $ref: '#/components/schemas/Missing'
        list:
          $ref: '#/components/schemas/List'
        userId:
          type: string
        user_id:
          type: integer
        choice:
          oneOf:
            - type: string
        kept:
          type: string
    Broken:
      $ref: '#/components/schemas/Missing'
`)

	decl, diags := f.build(t, "List")
	assert.Nil(t, decl)
	assert.Equal(t, []string{validation.RuleGenerationSkippedEntry + " List"}, rules(diags))

	decl, diags = f.build(t, "Broken")
	assert.Nil(t, decl)
	assert.Equal(t, []string{validation.RuleGenerationSkippedEntry + " Broken"}, rules(diags))

	decl, diags = f.build(t, "Thing")
	obj, ok := decl.(*ir.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "kept"}, memberNames(obj))
	assert.Equal(t, []string{
		validation.RuleGenerationSkippedProperty + " Thing.untyped",
		validation.RuleGenerationSkippedProperty + " Thing.noItems",
		validation.RuleGenerationSkippedProperty + " Thing.matrix",
		validation.RuleGenerationSkippedProperty + " Thing.dangling",
		validation.RuleGenerationSkippedProperty + " Thing.list",
		validation.RuleGenerationSkippedProperty + " Thing.user_id",
		validation.RuleGenerationUnsupportedKeyword + " Thing.choice",
		validation.RuleGenerationSkippedProperty + " Thing.choice",
	}, rules(diags))

	var vErr *validation.Error
	require.ErrorAs(t, diags[0], &vErr)
	assert.Equal(t, validation.SeverityWarning, vErr.Severity)
	assert.Positive(t, vErr.GetLineNumber())
}

func TestBuilder_Build_IdentifierCollision_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `
components:
  schemas:
    Thing:
      type: object
      properties:
        user-id:
          type: string
        user_id:
          type: integer
        foo_bar:
          type: object
          properties:
            a:
              type: string
        fooBar:
          type: object
          properties:
            b:
              type: string
        address:
          type: array
          items:
            type: object
            properties:
              street:
                type: string
        address_item:
          type: object
`)

	decl, diags := f.build(t, "Thing")
	obj, ok := decl.(*ir.Object)
	require.True(t, ok)

	assert.Equal(t, []string{"user-id", "foo_bar", "address"}, memberNames(obj))

	nested := make([]string, 0, len(obj.Nested))
	for _, n := range obj.Nested {
		nested = append(nested, n.Name)
	}
	assert.Equal(t, []string{"FooBar", "AddressItem"}, nested)
	foo, ok := obj.NestedObject("FooBar")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, memberNames(foo))

	assert.Equal(t, []string{
		validation.RuleGenerationSkippedProperty + " Thing.user_id",
		validation.RuleGenerationSkippedProperty + " Thing.fooBar",
		validation.RuleGenerationSkippedProperty + " Thing.address_item",
	}, rules(diags))
}

func TestBuilder_Build_ForwardReference_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `
components:
  schemas:
    Early:
      type: object
      required: [late]
      properties:
        late:
          $ref: '#/components/schemas/Late'
    Late:
      type: number
      minimum: 1.5
`)

	obj := f.object(t, "Early")
	require.Len(t, obj.Members, 1)
	assert.Equal(t, ir.Named{Name: "Late", Primitive: schema.KindNumber}, obj.Members[0].Type)
	assert.Equal(t, "1.5", obj.Members[0].Constraints.Minimum.Raw)
}

func TestBuilder_MapType_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mapping)

	tests := []struct {
		name     string
		node     *schema.Node
		expected ir.TypeRef
		reason   bool
	}{
		{name: "status", node: &schema.Node{Type: "string"}, expected: ir.Primitive{Type: schema.KindString}},
		{name: "pos", node: &schema.Node{Type: "object"}, expected: ir.Named{Name: "Pos", Target: "Pos", Synthesized: true}},
		{name: "items_list", node: &schema.Node{Type: "array", Items: &schema.Node{Type: "object"}}, expected: ir.Sequence{Elem: ir.Named{Name: "ItemsListItem", Target: "ItemsListItem", Synthesized: true}}},
		{name: "owner", node: &schema.Node{Ref: "#/components/schemas/Owner"}, expected: ir.Named{Name: "Owner", Target: "Owner"}},
		{name: "nothing", node: &schema.Node{}, reason: true},
		{name: "dangling", node: &schema.Node{Ref: "#/components/schemas/Nope"}, reason: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			typ, reason := f.builder.MapType(tt.name, tt.node)
			if tt.reason {
				assert.NotEmpty(t, reason)
				return
			}
			assert.Empty(t, reason)
			assert.Equal(t, tt.expected, typ)
		})
	}
}

func TestNewBuilder_Error(t *testing.T) {
	t.Parallel()

	_, err := ir.NewBuilder(resolver.New())
	require.ErrorIs(t, err, errors.ErrResolverNotSealed)
}
