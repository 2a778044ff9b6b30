package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/shared"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the part of [genai.Models] the tool caller uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiToolCaller forces a single function call through the Gemini API.
type GeminiToolCaller struct {
	models contentGenerator
	model  string
}

// NewGeminiToolCaller creates a Gemini client for apiKey. client may be nil.
func NewGeminiToolCaller(ctx context.Context, apiKey, model string, client *http.Client) (*GeminiToolCaller, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing Gemini api_key", shared.ErrMissingCredentials)
	}
	if model == "" {
		model = defaultGeminiModel
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiToolCaller{models: c.Models, model: model}, nil
}

// CallTool implements [intent.ToolCaller]. API and transport errors are reported as
// [shared.ErrLLMUnavailable]; cancellation of ctx is returned as is.
func (g *GeminiToolCaller) CallTool(ctx context.Context, system, user string, tool intent.Tool) (*intent.ToolCall, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  toGenaiSchema(tool.Parameters),
			}},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{tool.Name},
			},
		},
	}

	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, classifyGeminiError(ctx, err)
	}

	for _, call := range resp.FunctionCalls() {
		if call == nil {
			continue
		}
		args, err := json.Marshal(call.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode function arguments: %w", err)
		}
		return &intent.ToolCall{Name: call.Name, Arguments: args}, nil
	}
	return nil, nil
}

func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: gemini status %d: %s", shared.ErrLLMUnavailable, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return fmt.Errorf("%w: gemini status %d: %s", shared.ErrLLMUnavailable, apiErrPtr.Code, apiErrPtr.Message)
	}
	return fmt.Errorf("%w: %v", shared.ErrLLMUnavailable, err)
}

// toGenaiSchema converts the JSON Schema subset used by intent tools into a [genai.Schema].
func toGenaiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaTypes[t]
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if v, ok := e.(string); ok {
				s.Enum = append(s.Enum, v)
			}
		}
	}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if v, ok := r.(string); ok {
				s.Required = append(s.Required, v)
			}
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	return s
}

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"string":  genai.TypeString,
	"boolean": genai.TypeBoolean,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"array":   genai.TypeArray,
}
