package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// LLMResolver is the primary path: one tool call against a language model.
type LLMResolver struct {
	caller  ToolCaller
	tool    Tool
	prompt  string
	timeout time.Duration
	logger  *log.Logger
}

// NewLLMResolver creates an [LLMResolver]. A zero timeout leaves the caller's deadline in charge.
func NewLLMResolver(caller ToolCaller, timeout time.Duration, logger *log.Logger) *LLMResolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LLMResolver{
		caller:  caller,
		tool:    IntentTool(),
		prompt:  SystemPrompt,
		timeout: timeout,
		logger:  logger,
	}
}

type toolArguments struct {
	Action *string        `json:"action"`
	Query  *string        `json:"query"`
	Extras map[string]any `json:"extras"`
}

// Resolve asks the model for a resolve_intent call.
//
// A missing call or malformed arguments resolve to [models.UnknownIntent]; transport faults are returned.
func (r *LLMResolver) Resolve(ctx context.Context, utterance string) (models.Intent, error) {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	call, err := r.caller.CallTool(callCtx, r.prompt, utterance, r.tool)
	if err != nil {
		// our own deadline firing means the model is too slow, not that the caller gave up
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !IsUnavailable(err) {
			err = fmt.Errorf("%w: %v", shared.ErrLLMUnavailable, err)
		}
		return models.Intent{}, err
	}

	if call == nil || call.Name != r.tool.Name {
		r.logger.Warn("no tool call returned, resolving to unknown", "utterance", utterance)
		return models.UnknownIntent().WithSource(models.SourcePrimary), nil
	}

	intent, err := parseArguments(call.Arguments)
	if err != nil {
		r.logger.Error("failed to parse tool call arguments", "error", err)
		return models.UnknownIntent().WithSource(models.SourcePrimary), nil
	}

	r.logger.Debug("primary intent", "action", intent.Action, "query", intent.Query)
	return intent.WithSource(models.SourcePrimary), nil
}

func parseArguments(raw json.RawMessage) (models.Intent, error) {
	var args toolArguments
	if err := json.Unmarshal(raw, &args); err != nil {
		return models.Intent{}, err
	}
	if args.Action == nil || args.Query == nil {
		return models.Intent{}, fmt.Errorf("action and query are required")
	}

	action := models.Action(strings.TrimSpace(*args.Action))
	if !action.Valid() {
		return models.Intent{}, fmt.Errorf("unknown action %q", action)
	}

	extras := args.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	return models.Intent{Action: action, Query: strings.TrimSpace(*args.Query), Extras: extras}, nil
}
