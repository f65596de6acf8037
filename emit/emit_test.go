package emit_test

import (
	"strings"
	"testing"

	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmitter struct {
	name string
}

func (f fakeEmitter) Name() string          { return f.name }
func (f fakeEmitter) FileExtension() string { return ".txt" }

func (f fakeEmitter) EmitUnit(decl ir.Decl, _ emit.Options) (*emit.Unit, error) {
	return &emit.Unit{Name: decl.TypeName(), Content: []byte(decl.TypeName())}, nil
}

func (f fakeEmitter) EmitUmbrella(_ []*emit.Unit, _ emit.Options) (*emit.Unit, error) {
	return &emit.Unit{Kind: emit.UnitUmbrella}, nil
}

func TestRegistry_Success(t *testing.T) {
	t.Parallel()

	emit.Register(fakeEmitter{name: "zz-fake"})
	emit.Register(fakeEmitter{name: "aa-fake"})

	e, err := emit.Get("zz-fake")
	require.NoError(t, err)
	assert.Equal(t, "zz-fake", e.Name())

	available := emit.Available()
	assert.Contains(t, available, "aa-fake")
	assert.Contains(t, available, "zz-fake")
	assert.IsNonDecreasing(t, available)
}

func TestRegistry_Get_Error(t *testing.T) {
	t.Parallel()

	_, err := emit.Get("cobol")
	require.ErrorIs(t, err, errors.ErrUnknownTarget)
	assert.Contains(t, err.Error(), "cobol")
}

func TestUnit_Lines_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{name: "empty", content: "", expected: 0},
		{name: "no trailing newline", content: "a\nb", expected: 2},
		{name: "trailing newline", content: "a\nb\n", expected: 2},
		{name: "blank lines", content: "a\n\n\nb", expected: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := &emit.Unit{Content: []byte(tt.content)}
			assert.Equal(t, tt.expected, u.Lines())
		})
	}
}

func TestDeps_Sorted_Success(t *testing.T) {
	t.Parallel()

	d := emit.Deps{}
	d.Add("#include <vector>", "#include <string>")
	d.Add("#include <string>", "#include <memory>")
	assert.Equal(t, []string{"#include <memory>", "#include <string>", "#include <vector>"}, d.Sorted())
	assert.Empty(t, emit.Deps{}.Sorted())
}

func TestOptions_Width_Success(t *testing.T) {
	t.Parallel()

	assert.Equal(t, emit.DefaultWrapWidth, emit.Options{}.Width())
	assert.Equal(t, 40, emit.Options{WrapWidth: 40}.Width())
}

func TestWrap_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{name: "empty", text: "", width: 10, expected: nil},
		{name: "fits", text: "short text", width: 10, expected: []string{"short text"}},
		{name: "newlines are whitespace", text: "Summary.\nDescription  here.", width: 77, expected: []string{"Summary. Description here."}},
		{name: "greedy", text: "aaa bbb ccc ddd", width: 7, expected: []string{"aaa bbb", "ccc ddd"}},
		{name: "long word", text: "abcdefghij xy", width: 4, expected: []string{"abcd", "efgh", "ij", "xy"}},
		{name: "multibyte", text: "ééé ééé", width: 3, expected: []string{"ééé", "ééé"}},
		{name: "default width", text: "a b", width: 0, expected: []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, emit.Wrap(tt.text, tt.width))
		})
	}
}

func TestWrap_Width_Success(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	for _, line := range emit.Wrap(text, 77) {
		assert.LessOrEqual(t, len(line), 77)
	}
}
