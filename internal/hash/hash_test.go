package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticHashMapOrderIndependent(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2}
	b := map[string]any{"b": 2, "a": 1}
	assert.Equal(t, SemanticHash(a), SemanticHash(b))
}

func TestSemanticHashListOrderDependent(t *testing.T) {
	a := []any{1, 2, 3}
	b := []any{3, 2, 1}
	assert.NotEqual(t, SemanticHash(a), SemanticHash(b))
}

func TestSemanticHashStable(t *testing.T) {
	v := map[string]any{"x": []any{1, "two", 3.5}, "nested": map[string]any{"k": true}}
	h1 := SemanticHash(v)
	h2 := SemanticHash(v)
	require.Len(t, h1, 32)
	assert.Equal(t, h1, h2)
}

func TestSemanticHashDistinguishesStructuralDifference(t *testing.T) {
	a := map[string]any{"a": 1}
	b := map[string]any{"a": 2}
	assert.NotEqual(t, SemanticHash(a), SemanticHash(b))
}

func TestDeepHashDeterministicWithinProcess(t *testing.T) {
	v := map[string]any{"clock_period": 5.0, "strategy": "Timing"}
	assert.Equal(t, DeepHash(v), DeepHash(v))
}

func TestDeepHashDiffersOnChange(t *testing.T) {
	a := map[string]any{"clock_period": 5.0}
	b := map[string]any{"clock_period": 5.1}
	assert.NotEqual(t, DeepHash(a), DeepHash(b))
}

type fielderStruct struct {
	A int
	B string
}

func (f fielderStruct) Fields() map[string]any {
	return map[string]any{"a": f.A, "b": f.B}
}

func TestSemanticHashFielder(t *testing.T) {
	f := fielderStruct{A: 1, B: "x"}
	equivMap := map[string]any{"a": 1, "b": "x"}
	assert.Equal(t, SemanticHash(f), SemanticHash(equivMap))
}
