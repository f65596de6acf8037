package resolver_test

import (
	"strings"
	"testing"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, src string) (*resolver.Resolver, *asyncapi.Document) {
	t.Helper()

	doc, _, err := asyncapi.Unmarshal(t.Context(), strings.NewReader(src))
	require.NoError(t, err)

	r := resolver.New()
	require.NoError(t, resolver.Populate(r, doc.Entries()))
	return r, doc
}

const aliases = `
asyncapi: 2.6.0
components:
  schemas:
    user_id:
      type: string
      minLength: 3
      maxLength: 12
    Counter:
      type: integer
    Account:
      type: object
      properties:
        id:
          $ref: '#/components/schemas/user_id'
  messages:
    account_created:
      schema:
        $ref: '#/components/schemas/Account'
    forward:
      schema:
        $ref: '#/components/schemas/later_type'
    later_type:
      payload:
        type: boolean
`

func TestPopulate_Success(t *testing.T) {
	t.Parallel()

	r, _ := populate(t, aliases)
	require.True(t, r.Sealed())
	assert.Empty(t, r.Diagnostics())

	tests := []struct {
		name     string
		expected string
	}{
		{name: "UserId", expected: "string"},
		{name: "Counter", expected: "integer"},
		{name: "Account", expected: "Account"},
		{name: "AccountCreated", expected: "Account"},
		{name: "Forward", expected: "boolean"},
		{name: "LaterType", expected: "boolean"},
		{name: "NeverDeclared", expected: "NeverDeclared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, r.ResolveAlias(tt.name))
		})
	}
}

func TestResolver_ResolveAlias_Idempotent_Success(t *testing.T) {
	t.Parallel()

	r, doc := populate(t, aliases)
	for _, e := range doc.Entries() {
		once := r.ResolveAlias(e.TypeName())
		assert.Equal(t, once, r.ResolveAlias(once), e.Key)
	}
}

func TestResolver_ResolveComponent_Success(t *testing.T) {
	t.Parallel()

	r, doc := populate(t, aliases)

	userID, ok := doc.Entry("user_id")
	require.True(t, ok)

	node := r.ResolveComponent("UserId", nil)
	assert.Same(t, userID.Schema, node)
	require.NotNil(t, node.MinLength)
	assert.Equal(t, 3, *node.MinLength)

	later, ok := doc.Entry("later_type")
	require.True(t, ok)
	assert.Same(t, later.Schema.Payload, r.ResolveComponent("Forward", nil), "message components contribute their payload")

	fallback := &schema.Node{Type: "string"}
	assert.Same(t, fallback, r.ResolveComponent("NeverDeclared", fallback))
}

func TestResolver_ResolveComponent_PrefersConstrainedNode_Success(t *testing.T) {
	t.Parallel()

	r := resolver.New()
	maxLength := 5
	constrained := &schema.Node{Type: "string", MaxLength: &maxLength}
	plain := &schema.Node{Type: "string"}

	require.NoError(t, r.RegisterAlias("A", "B"))
	require.NoError(t, r.RegisterAlias("B", "string"))
	require.NoError(t, r.RegisterComponent("A", "A", constrained))
	require.NoError(t, r.RegisterComponent("B", "B", plain))
	r.Seal()

	assert.Same(t, constrained, r.ResolveComponent("A", nil))
	assert.Same(t, plain, r.ResolveComponent("B", nil))
}

func TestResolver_Resolve_Success(t *testing.T) {
	t.Parallel()

	r, _ := populate(t, `
components:
  schemas:
    Flag:
      type: boolean
    Obj:
      type: object
    Bare:
      nested:
        type: string
    List:
      type: array
      items:
        type: string
    Alias:
      $ref: '#/components/schemas/Obj'
    Dangling:
      $ref: '#/components/schemas/Nope'
`)

	tests := []struct {
		name     string
		kind     resolver.Kind
		terminal string
	}{
		{name: "Flag", kind: resolver.ResolvedPrimitive, terminal: "boolean"},
		{name: "Obj", kind: resolver.ResolvedObject, terminal: "Obj"},
		{name: "Bare", kind: resolver.ResolvedObject, terminal: "Bare"},
		{name: "List", kind: resolver.ResolvedUnsupported, terminal: "List"},
		{name: "Alias", kind: resolver.ResolvedObject, terminal: "Obj"},
		{name: "Dangling", kind: resolver.ResolvedMissing, terminal: "Nope"},
		{name: "Missing", kind: resolver.ResolvedMissing, terminal: "Missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := r.Resolve(tt.name)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.terminal, res.Terminal)
		})
	}

	assert.Equal(t, schema.KindBoolean, r.Resolve("Flag").Primitive)
}

func TestResolver_Sealed_Error(t *testing.T) {
	t.Parallel()

	r := resolver.New()
	assert.False(t, r.Sealed())
	r.Seal()
	r.Seal()

	err := r.RegisterAlias("A", "string")
	require.ErrorIs(t, err, errors.ErrResolverSealed)

	err = r.RegisterComponent("A", "a", &schema.Node{})
	require.ErrorIs(t, err, errors.ErrResolverSealed)
	assert.False(t, r.IsComponent("A"))
}

func TestResolver_Collision_Success(t *testing.T) {
	t.Parallel()

	r, doc := populate(t, `
components:
  schemas:
    user_event:
      type: string
    user-event:
      type: integer
`)

	assert.Equal(t, "integer", r.ResolveAlias("UserEvent"), "the later definition wins")

	later, ok := doc.Entry("user-event")
	require.True(t, ok)
	node, ok := r.Component("UserEvent")
	require.True(t, ok)
	assert.Same(t, later.Schema, node)

	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	var vErr *validation.Error
	require.ErrorAs(t, diags[0], &vErr)
	assert.Equal(t, validation.RuleValidationDuplicateTypeName, vErr.Rule)
	assert.Equal(t, validation.SeverityWarning, vErr.Severity)
	assert.Equal(t, "user-event", vErr.Entry)
}

func TestResolver_Cycle_Error(t *testing.T) {
	t.Parallel()

	r, _ := populate(t, `
components:
  schemas:
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/C'
    C:
      $ref: '#/components/schemas/A'
    D:
      $ref: '#/components/schemas/A'
`)

	diags := r.Diagnostics()
	require.Len(t, diags, 1, "a cycle is reported once")

	var vErr *validation.Error
	require.ErrorAs(t, diags[0], &vErr)
	assert.Equal(t, validation.RuleValidationCircularReference, vErr.Rule)
	assert.Equal(t, validation.SeverityError, vErr.Severity)
	assert.Contains(t, vErr.Error(), "A -> B -> C -> A")

	assert.Equal(t, "A", r.ResolveAlias("A"), "resolution stops at the first repeated name")
	assert.Equal(t, "A", r.ResolveAlias("D"))
	assert.Equal(t, resolver.ResolvedUnsupported, r.Resolve("D").Kind)
}

func TestAliasTarget_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     *schema.Node
		expected string
		ok       bool
	}{
		{name: "primitive", node: &schema.Node{Type: "number"}, expected: "number", ok: true},
		{name: "ref", node: &schema.Node{Ref: "#/components/schemas/user_id"}, expected: "UserId", ok: true},
		{name: "type wins over ref", node: &schema.Node{Type: "object", Ref: "#/x"}},
		{name: "payload ref", node: &schema.Node{Payload: &schema.Node{Ref: "#/components/schemas/Thing"}}, expected: "Thing", ok: true},
		{name: "payload primitive", node: &schema.Node{Type: "object", Payload: &schema.Node{Type: "string"}}, expected: "string", ok: true},
		{name: "object", node: &schema.Node{Type: "object"}},
		{name: "array", node: &schema.Node{Type: "array"}},
		{name: "bare", node: &schema.Node{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, ok := resolver.AliasTarget(tt.node)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, target)
		})
	}
}
