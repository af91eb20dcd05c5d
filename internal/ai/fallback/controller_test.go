package fallback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// scriptedProvider fails for the models listed in errs and answers otherwise.
type scriptedProvider struct {
	mu       sync.Mutex
	errs     map[string]error
	models   []types.Model
	listErr  error
	calls    []string
	listCall int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, req *types.GenerateRequest) (*types.GenerateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req.Model)
	if err := p.errs[req.Model]; err != nil {
		return nil, err
	}
	return &types.GenerateResult{Model: req.Model, Parts: []types.ResultPart{{Text: "ok from " + req.Model}}}, nil
}

func (p *scriptedProvider) ListModels(context.Context) ([]types.Model, error) {
	p.listCall++
	return p.models, p.listErr
}

func (p *scriptedProvider) Close() error { return nil }

var (
	quotaErr    = types.NewHTTPError("google", 429, "quota")
	notFoundErr = types.NewHTTPError("google", 404, "model not found")
	authErr     = types.NewHTTPError("google", 401, "bad key")
)

func TestChainNext(t *testing.T) {
	chain := Chain{Baseline: "base", Legacy: "legacy"}

	tests := []struct {
		name    string
		model   string
		retries int
		class   Class
		want    string
		wantOK  bool
	}{
		{"quota on requested", "req", 0, ClassQuota, "base", true},
		{"not found on requested", "req", 0, ClassNotFound, "base", true},
		{"other is terminal", "req", 0, ClassOther, "", false},
		{"quota on baseline is terminal", "base", 1, ClassQuota, "", false},
		{"not found on baseline goes legacy", "base", 1, ClassNotFound, "legacy", true},
		{"legacy never loops back", "legacy", 0, ClassQuota, "", false},
		{"budget exhausted", "req", MaxRetries, ClassQuota, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chain.Next(tt.model, tt.retries, tt.class)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSuccessFirstTry(t *testing.T) {
	p := &scriptedProvider{}
	c := NewController(logger.NewNop())

	out, err := c.Generate(context.Background(), registry.Google, p, &types.GenerateRequest{Model: "gemini-2.5-flash-image"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-image", out.Model)
	assert.Len(t, out.Attempts, 1)
}

func TestGenerateQuotaFallsBackToBaseline(t *testing.T) {
	p := &scriptedProvider{errs: map[string]error{"gemini-2.5-flash-image": quotaErr}}
	c := NewController(logger.NewNop())

	out, err := c.Generate(context.Background(), registry.Google, p, &types.GenerateRequest{Model: "gemini-2.5-flash-image"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", out.Model)
	assert.Equal(t, "ok from gemini-2.5-flash", out.Result.Text())
	assert.Equal(t, []string{"gemini-2.5-flash-image", "gemini-2.5-flash"}, p.calls)
}

func TestGenerateNotFoundWalksWholeChain(t *testing.T) {
	p := &scriptedProvider{
		errs: map[string]error{
			"gemini-2.5-pro":   notFoundErr,
			"gemini-2.5-flash": notFoundErr,
			"gemini-1.5-flash": notFoundErr,
		},
		models: []types.Model{{ID: "gemini-2.0-flash"}, {ID: "gemini-2.0-flash-lite"}},
	}
	c := NewController(logger.NewNop())

	_, err := c.Generate(context.Background(), registry.Google, p, &types.GenerateRequest{Model: "gemini-2.5-pro"})
	require.Error(t, err)

	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-1.5-flash"}, p.calls)
	assert.Equal(t, 1, p.listCall)
	assert.True(t, types.IsModelNotFound(err))
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"}, AvailableModels(err))
	assert.Contains(t, err.Error(), "Available models: gemini-2.0-flash, gemini-2.0-flash-lite")
}

func TestGenerateDiagnosticFailureIsSwallowed(t *testing.T) {
	p := &scriptedProvider{
		errs:    map[string]error{"gpt-4o": notFoundErr, "gpt-4o-mini": quotaErr},
		listErr: errors.New("listing unavailable"),
	}
	c := NewController(logger.NewNop())

	_, err := c.Generate(context.Background(), registry.OpenAI, p, &types.GenerateRequest{Model: "gpt-4o"})
	require.Error(t, err)

	// the baseline failed with quota, so no legacy attempt and no diagnostics
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, p.calls)
	assert.Equal(t, 0, p.listCall)
	assert.True(t, types.IsQuotaExceeded(err))

	p2 := &scriptedProvider{
		errs: map[string]error{
			"claude-3-5-haiku-latest": notFoundErr,
			"claude-3-haiku-20240307": notFoundErr,
		},
		listErr: errors.New("listing unavailable"),
	}
	_, err = c.Generate(context.Background(), registry.Anthropic, p2, &types.GenerateRequest{Model: "claude-3-5-haiku-latest"})
	require.Error(t, err)
	assert.Equal(t, []string{"claude-3-5-haiku-latest", "claude-3-haiku-20240307"}, p2.calls)
	assert.True(t, errors.Is(err, notFoundErr))
	assert.Nil(t, AvailableModels(err))
	assert.NotContains(t, err.Error(), "Available models")
}

func TestGenerateOtherErrorIsTerminal(t *testing.T) {
	p := &scriptedProvider{errs: map[string]error{"gpt-4o": authErr}}
	c := NewController(logger.NewNop())

	_, err := c.Generate(context.Background(), registry.OpenAI, p, &types.GenerateRequest{Model: "gpt-4o"})
	assert.True(t, types.IsAuthentication(err))
	assert.Equal(t, []string{"gpt-4o"}, p.calls)
}

func TestGenerateNeverExceedsThreeAttempts(t *testing.T) {
	errs := map[string]error{}
	for _, m := range []string{"gemini-2.5-flash-image", "gemini-2.5-flash", "gemini-1.5-flash"} {
		errs[m] = notFoundErr
	}
	p := &scriptedProvider{errs: errs}

	_, err := NewController(logger.NewNop()).Generate(context.Background(), registry.Google, p,
		&types.GenerateRequest{Model: "gemini-2.5-flash-image"})
	require.Error(t, err)
	assert.LessOrEqual(t, len(p.calls), MaxRetries+1)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassQuota, Classify(quotaErr))
	assert.Equal(t, ClassQuota, Classify(types.NewHTTPError("x", 503, "")))
	assert.Equal(t, ClassNotFound, Classify(notFoundErr))
	assert.Equal(t, ClassOther, Classify(errors.New("boom")))
	assert.Equal(t, "not_found", ClassNotFound.String())
}
