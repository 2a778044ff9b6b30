package intent

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// FallbackResolver tries primary and degrades to fallback only on an [IsUnavailable] fault.
type FallbackResolver struct {
	primary  Resolver
	fallback Resolver
	logger   *log.Logger
}

// NewFallbackResolver chains primary and fallback. A nil primary always uses fallback.
func NewFallbackResolver(primary, fallback Resolver, logger *log.Logger) *FallbackResolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FallbackResolver{primary: primary, fallback: fallback, logger: logger}
}

// Resolve implements [Resolver].
func (r *FallbackResolver) Resolve(ctx context.Context, utterance string) (models.Intent, error) {
	r.logger.Info("parsing intent", "utterance", utterance)

	if r.primary != nil {
		intent, err := r.primary.Resolve(ctx, utterance)
		if err == nil {
			return intent, nil
		}
		if !IsUnavailable(err) {
			return models.Intent{}, err
		}
		r.logger.Warn("language model unavailable, using keyword fallback", "error", err)
	}

	return r.fallback.Resolve(ctx, utterance)
}

// Options configures [New].
type Options struct {
	Timeout time.Duration // deadline for the language model call
	Logger  *log.Logger
}

// New builds the standard resolver: the caller's language model backed by the default keyword policy.
//
// A nil caller resolves every utterance with keywords only.
func New(caller ToolCaller, opts Options) Resolver {
	fallback := NewKeywordResolver(DefaultKeywordPolicy())
	if caller == nil {
		return NewFallbackResolver(nil, fallback, opts.Logger)
	}
	primary := NewLLMResolver(caller, opts.Timeout, opts.Logger)
	return NewFallbackResolver(primary, fallback, opts.Logger)
}
