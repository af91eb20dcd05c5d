package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	ids := make([]ProviderID, 0)
	for _, p := range List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []ProviderID{Google, OpenAI, Anthropic}, ids)

	assert.Equal(t, "gemini-2.5-flash-image", DefaultModel(Google))
	assert.Equal(t, "gpt-4o", DefaultModel(OpenAI))
	assert.Equal(t, "claude-3-5-sonnet-latest", DefaultModel(Anthropic))
	assert.Equal(t, "", DefaultModel("mistral"))

	assert.True(t, HasModel(OpenAI, "gpt-4-turbo"))
	assert.False(t, HasModel(OpenAI, "gemini-2.5-flash"))
	assert.False(t, IsKnown("mistral"))
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"gemini-2.0-pro-exp-02-05", "gemini-2.5-pro"},
		{"gemini-2.5-flash-image-preview", "gemini-2.5-flash-image"},
		{"claude-3-5-sonnet", "claude-3-5-sonnet-latest"},
		{"gpt-4o", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAlias(tt.id))
		})
	}
}

func TestRegisterReplaces(t *testing.T) {
	original, err := Get(OpenAI)
	require.NoError(t, err)
	t.Cleanup(func() { Register(original) })

	Register(ProviderInfo{ID: OpenAI, Label: "OpenAI", Models: []ModelInfo{{ID: "o3"}}}, "gpt-legacy")

	assert.Len(t, List(), 3)
	assert.Equal(t, "o3", DefaultModel(OpenAI))
	assert.Equal(t, "o3", ResolveAlias("gpt-legacy"))
}
