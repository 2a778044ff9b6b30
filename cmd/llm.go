package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/services"
	"github.com/desertthunder/moodplay/internal/shared"
)

// newToolCaller picks the language model named by [shared.LLMConfig.Provider].
//
// "none" (or empty) returns a nil caller, which resolves with keywords only.
func newToolCaller(ctx context.Context, config *shared.Config, client *http.Client) (intent.ToolCaller, error) {
	creds := config.Credentials

	switch provider := strings.ToLower(strings.TrimSpace(config.LLM.Provider)); provider {
	case "", "none":
		return nil, nil
	case "openai":
		caller, err := services.NewOpenAIToolCaller(creds.OpenAI.APIKey, creds.OpenAI.BaseURL, config.LLM.Model, client)
		if err != nil {
			return nil, err
		}
		return caller, nil
	case "gemini":
		caller, err := services.NewGeminiToolCaller(ctx, creds.Gemini.APIKey, config.LLM.Model, client)
		if err != nil {
			return nil, err
		}
		return caller, nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q (expected openai, gemini or none)", shared.ErrInvalidConfig, provider)
	}
}
