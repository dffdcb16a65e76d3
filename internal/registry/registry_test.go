package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliases(t *testing.T) {
	r := New("")

	cases := map[string]string{
		"gpt-4":             ModelSonnet,
		"gpt-4-turbo":       ModelSonnet,
		"gpt-3.5-turbo":     ModelHaiku,
		"claude-3-5-sonnet": ModelSonnet,
		"claude-3-5-haiku":  ModelHaiku,
		ModelSonnet:         ModelSonnet,
		ModelHaiku:          ModelHaiku,
	}

	for name, want := range cases {
		got, ok := r.Resolve(name)
		require.True(t, ok, "expected %q to resolve", name)
		assert.Equal(t, want, got)
	}
}

func TestResolveIsPure(t *testing.T) {
	r := New("")

	first, ok := r.Resolve("gpt-4")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, okAgain := r.Resolve("gpt-4")
		require.True(t, okAgain)
		assert.Equal(t, first, again)
	}

	canonical, ok := r.Resolve(ModelSonnet)
	require.True(t, ok)
	assert.Equal(t, canonical, first, "gpt-4 must resolve to the same identifier as the sonnet canonical name")
}

func TestResolveUnknownWithoutDefault(t *testing.T) {
	r := New("")

	_, ok := r.Resolve("llama-70b")
	assert.False(t, ok)
}

func TestResolveUnknownFallsThroughToDefault(t *testing.T) {
	r := New(ModelHaiku)

	got, ok := r.Resolve("llama-70b")
	require.True(t, ok)
	assert.Equal(t, ModelHaiku, got)
}

func TestDefaultModelAcceptsAlias(t *testing.T) {
	r := New("gpt-3.5-turbo")

	got, ok := r.Resolve("some-unknown-model")
	require.True(t, ok)
	assert.Equal(t, ModelHaiku, got)
}

func TestModelsListsCanonicalAndAliases(t *testing.T) {
	r := New("")

	ids := make(map[string]bool)
	for _, m := range r.Models() {
		assert.Equal(t, "model", m.Object)
		ids[m.ID] = true
	}

	for _, want := range []string{ModelSonnet, ModelHaiku, "gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"} {
		assert.True(t, ids[want], "missing model %q", want)
	}
}
