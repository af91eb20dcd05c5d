// Package fallback retries a failed generation against a fixed chain of models.
//
// A single call walks at most three models: the requested one, the
// provider's baseline, then its legacy model. Quota/unavailable and
// not-found failures move down the chain; the legacy step is only taken
// for not-found on the baseline. Everything else is terminal.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// MaxRetries is the retry budget for one user-initiated call.
const MaxRetries = 2

// Class is the retry-relevant category of a provider failure.
type Class int

const (
	ClassOther Class = iota
	ClassQuota
	ClassNotFound
)

func (c Class) String() string {
	switch c {
	case ClassQuota:
		return "quota"
	case ClassNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// Classify maps an error onto a retry class.
func Classify(err error) Class {
	switch {
	case types.IsQuotaExceeded(err):
		return ClassQuota
	case types.IsModelNotFound(err):
		return ClassNotFound
	default:
		return ClassOther
	}
}

// Chain holds the baseline and legacy models of one provider.
type Chain struct {
	Baseline string
	Legacy   string
}

var chains = map[registry.ProviderID]Chain{
	registry.Google:    {Baseline: "gemini-2.5-flash", Legacy: "gemini-1.5-flash"},
	registry.OpenAI:    {Baseline: "gpt-4o-mini", Legacy: "gpt-3.5-turbo"},
	registry.Anthropic: {Baseline: "claude-3-5-haiku-latest", Legacy: "claude-3-haiku-20240307"},
}

// ChainFor returns the fallback chain of a provider.
func ChainFor(id registry.ProviderID) (Chain, bool) {
	c, ok := chains[id]
	return c, ok
}

// Next decides the model of the following attempt. ok is false when the
// failure is terminal.
func (c Chain) Next(model string, retries int, class Class) (string, bool) {
	if retries >= MaxRetries {
		return "", false
	}
	switch {
	case (class == ClassQuota || class == ClassNotFound) && model != c.Baseline && model != c.Legacy:
		return c.Baseline, true
	case class == ClassNotFound && model == c.Baseline && c.Legacy != "":
		return c.Legacy, true
	default:
		return "", false
	}
}

// Attempt records one call in the chain.
type Attempt struct {
	Model string
	Err   error
}

// Outcome is the successful result and the path that produced it.
type Outcome struct {
	Result   *types.GenerateResult
	Model    string
	Attempts []Attempt
}

// DiagnosticError is a terminal not-found failure enriched with the
// models the credential can actually use.
type DiagnosticError struct {
	Err       error
	Model     string
	Available []string
}

func (e *DiagnosticError) Error() string {
	if len(e.Available) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s. Available models: %s", e.Err.Error(), strings.Join(e.Available, ", "))
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// AvailableModels returns the discovered model ids carried by err, if any.
func AvailableModels(err error) []string {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Available
	}
	return nil
}

// Controller drives the fallback state machine.
type Controller struct {
	log *logger.Logger
}

// NewController creates a controller.
func NewController(log *logger.Logger) *Controller {
	return &Controller{log: log.Named("fallback")}
}

// Generate runs req against p, walking the provider's chain on failure.
func (c *Controller) Generate(ctx context.Context, id registry.ProviderID, p types.Provider, req *types.GenerateRequest) (*Outcome, error) {
	chain, _ := ChainFor(id)
	log := c.log.WithContext(ctx).With(zap.String("provider", string(id)))

	model := req.Model
	attempts := make([]Attempt, 0, MaxRetries+1)

	for retries := 0; ; retries++ {
		result, err := p.Generate(ctx, req.WithModel(model))
		attempts = append(attempts, Attempt{Model: model, Err: err})
		if err == nil {
			log.Debug("generation succeeded",
				zap.String("model", model),
				zap.Int("attempts", len(attempts)),
				zap.Int("text_len", len(result.Text())))
			return &Outcome{Result: result, Model: model, Attempts: attempts}, nil
		}

		class := Classify(err)
		if ctx.Err() != nil {
			return nil, err
		}

		next, ok := chain.Next(model, retries, class)
		if !ok {
			log.Warn("generation failed",
				zap.String("model", model),
				zap.Int("attempts", len(attempts)),
				zap.Stringer("class", class),
				zap.Error(err))
			if class == ClassNotFound {
				return nil, c.diagnose(ctx, p, model, err)
			}
			return nil, err
		}

		log.Info("retrying with fallback model",
			zap.String("failed_model", model),
			zap.String("next_model", next),
			zap.Stringer("class", class))
		model = next
	}
}

// diagnose queries the provider's model list. Lookup failures are
// logged and the original error is returned unchanged.
func (c *Controller) diagnose(ctx context.Context, p types.Provider, model string, cause error) error {
	models, err := p.ListModels(ctx)
	if err != nil {
		c.log.Debug("model listing failed", zap.Error(err))
		return &DiagnosticError{Err: cause, Model: model}
	}
	return &DiagnosticError{Err: cause, Model: model, Available: types.ModelIDs(models)}
}
