package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(&types.Config{APIKey: "g-key", BaseURL: srv.URL + "/v1beta/"}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestGenerateTextAndImage(t *testing.T) {
	var got generateContentRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"candidates":[{"finishReason":"STOP","content":{"role":"model","parts":[
			{"text":"Here is your logo"},
			{"inlineData":{"mimeType":"image/png","data":"iVBORw0KGgo="}},
			{"text":"Enjoy"}
		]}}]}`))
	})

	result, err := p.Generate(context.Background(), &types.GenerateRequest{
		Model:             "gemini-2.5-flash-image",
		SystemInstruction: "rules",
		Temperature:       0.3,
		History: []types.Turn{
			{Role: chattypes.RoleUser, Texts: []string{"hi"}},
			{Role: chattypes.RoleModel, Texts: []string{"hello"}},
		},
		Prompt: "draw a logo",
	})
	require.NoError(t, err)

	require.Len(t, result.Parts, 3)
	assert.Equal(t, "Here is your logo", result.Parts[0].Text)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", result.Parts[1].ImageDataURI)
	assert.Equal(t, "Enjoy", result.Parts[2].Text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "rules", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, 0.3, got.GenerationConfig.Temperature)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "draw a logo", got.Contents[2].Parts[0].Text)
}

func TestGenerateSkipsNonImageInlineData(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		keep     bool
	}{
		{name: "pdf", mimeType: "application/pdf"},
		{name: "audio", mimeType: "audio/wav"},
		{name: "missing mime type", mimeType: ""},
		{name: "jpeg", mimeType: "image/jpeg", keep: true},
		{name: "upper case image", mimeType: "IMAGE/PNG", keep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[{"content":{"parts":[
					{"text":"See attached"},
					{"inlineData":{"mimeType":"` + tt.mimeType + `","data":"JVBERi0x"}}
				]}}]}`))
			})

			result, err := p.Generate(context.Background(), &types.GenerateRequest{Model: "gemini-2.5-flash", Prompt: "x"})
			require.NoError(t, err)
			assert.Equal(t, "See attached", result.Parts[0].Text)
			if !tt.keep {
				assert.Len(t, result.Parts, 1)
				return
			}
			require.Len(t, result.Parts, 2)
			assert.True(t, result.Parts[1].IsImage())
		})
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	result, err := p.Generate(context.Background(), &types.GenerateRequest{Model: "gemini-2.5-flash", Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		text   string
	}{
		{
			name:   "invalid key reported as 400",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			check:  types.IsAuthentication,
			text:   "API key not valid",
		},
		{
			name:   "model not found",
			status: http.StatusNotFound,
			body:   `{"error":{"code":404,"message":"models/gemini-9 is not found","status":"NOT_FOUND"}}`,
			check:  types.IsModelNotFound,
			text:   "models/gemini-9 is not found",
		},
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			check:  types.IsQuotaExceeded,
			text:   "exhausted",
		},
		{
			name:   "non json body",
			status: http.StatusServiceUnavailable,
			body:   `upstream unavailable`,
			check:  types.IsQuotaExceeded,
			text:   "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := p.Generate(context.Background(), &types.GenerateRequest{Model: "gemini-9", Prompt: "x"})
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Contains(t, err.Error(), tt.text)
		})
	}
}

func TestListModels(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		w.Write([]byte(`{"models":[
			{"name":"models/gemini-2.5-flash","displayName":"Gemini 2.5 Flash","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]}
		]}`))
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.5-flash"}, types.ModelIDs(models))
}
