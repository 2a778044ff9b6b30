// Package intent resolves a free-form utterance into a structured [models.Intent].
//
// Two [Resolver] implementations share one contract:
//   - [LLMResolver] asks a language model to call the resolve_intent tool ([ToolCaller]).
//   - [KeywordResolver] classifies with fixed regular expressions.
//
// [FallbackResolver] runs the first and switches to the second only when [IsUnavailable]
// classifies the error as a quota or availability fault. Every other error propagates.
package intent

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// Resolver turns one utterance into an [models.Intent].
type Resolver interface {
	Resolve(ctx context.Context, utterance string) (models.Intent, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, utterance string) (models.Intent, error)

func (f ResolverFunc) Resolve(ctx context.Context, utterance string) (models.Intent, error) {
	return f(ctx, utterance)
}

// Tool describes a callable function offered to the language model. Parameters is a JSON Schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is the model's invocation of a [Tool]. Arguments is the raw JSON object it produced.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolCaller is a language-model function-calling service.
//
// CallTool returns a nil [ToolCall] when the model answered without invoking the tool.
// Implementations wrap quota and availability faults with [shared.ErrLLMUnavailable].
type ToolCaller interface {
	CallTool(ctx context.Context, system, user string, tool Tool) (*ToolCall, error)
}

// IsUnavailable reports whether err is the fault class that triggers the keyword fallback.
func IsUnavailable(err error) bool {
	return errors.Is(err, shared.ErrLLMUnavailable)
}

// ToolName is the single function the model is told to call.
const ToolName = "resolve_intent"

// SystemPrompt instructs the model; its mood keywords are tuned separately from [DefaultKeywordPolicy].
const SystemPrompt = `You are a music assistant that interprets user requests into structured actions.

Available actions:
- play_music          : user wants to play a song, artist, album, or playlist
- search_music        : user wants to search or find music without playing it
- get_recommendations : user wants song or artist recommendations
- get_current_user    : user asks who is logged in
- list_devices        : user wants to see available playback devices
- unknown             : request is unclear or unrelated to music

Query formatting:
- Remove filler words such as "play", "by", "the song", "some", "please".
- When both a song and an artist are named, format the query as "<Title> <Artist>", e.g. "Pied Piper BTS".
- When only an artist, album or playlist is named, use that name alone.
- For vibe, mood, ambience, study, lofi or background requests set extras.is_mood_or_genre to true
  and keep the genre or mood words as the query, e.g. "chill lofi".
- For specific songs, artists or albums leave extras.is_mood_or_genre unset.

Always call the resolve_intent function. Never reply with plain text.`

// IntentTool returns the resolve_intent tool definition.
func IntentTool() Tool {
	actions := make([]any, len(models.Actions))
	for i, a := range models.Actions {
		actions[i] = string(a)
	}

	return Tool{
		Name: ToolName,
		Description: "Parse the user's natural language music request and return a structured intent. " +
			"Always call this function, never respond with plain text.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"enum":        actions,
					"description": "The action the user wants to perform.",
				},
				"query": map[string]any{
					"type": "string",
					"description": "The search term, artist, song title, or genre extracted from the request. " +
						"Empty string if not applicable.",
				},
				"extras": map[string]any{
					"type":                 "object",
					"description":          "Additional structured parameters. Set is_mood_or_genre=true for mood or genre requests.",
					"additionalProperties": true,
					"properties": map[string]any{
						models.ExtraMoodOrGenre: map[string]any{"type": "boolean"},
					},
				},
			},
			"required": []any{"action", "query"},
		},
	}
}
