package sliceutil_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/speakeasy-api/asyncapi-codegen/internal/sliceutil"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		slice    []string
		fn       func(string) string
		expected []string
	}{
		{name: "empty slice", slice: []string{}, fn: strings.ToUpper, expected: []string{}},
		{name: "nil slice", slice: nil, fn: strings.ToUpper, expected: []string{}},
		{name: "keeps order", slice: []string{"b", "a", "c"}, fn: strings.ToUpper, expected: []string{"B", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sliceutil.Map(tt.slice, tt.fn))
		})
	}
}

func TestMap_ChangesType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"1", "22"}, sliceutil.Map([]int{1, 22}, strconv.Itoa))
}

func TestCompact(t *testing.T) {
	t.Parallel()

	a, b := 1, 2

	assert.Equal(t, []*int{&a, &b}, sliceutil.Compact([]*int{nil, &a, nil, &b}))
	assert.Empty(t, sliceutil.Compact([]*int{nil, nil}))
	assert.Empty(t, sliceutil.Compact[int](nil))
}
