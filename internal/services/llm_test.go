package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func TestOpenAIToolCaller(t *testing.T) {
	tool := intent.IntentTool()

	newCaller := func(t *testing.T, h http.HandlerFunc) *OpenAIToolCaller {
		t.Helper()
		ts := httptest.NewServer(h)
		t.Cleanup(ts.Close)
		c, err := NewOpenAIToolCaller("sk-test", ts.URL+"/v1/", "", ts.Client())
		if err != nil {
			t.Fatalf("failed to create caller: %v", err)
		}
		return c
	}

	t.Run("requires an api key", func(t *testing.T) {
		if _, err := NewOpenAIToolCaller("", "", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("forces the tool and returns its arguments", func(t *testing.T) {
		var got openAIRequest
		c := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
				t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
			}
			json.NewDecoder(r.Body).Decode(&got)
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"resolve_intent","arguments":"{\"action\":\"play_music\",\"query\":\"Hurt\"}"}}
			]}}]}`))
		})

		call, err := c.CallTool(context.Background(), "system prompt", "play hurt", tool)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if call.Name != intent.ToolName || string(call.Arguments) != `{"action":"play_music","query":"Hurt"}` {
			t.Errorf("unexpected call %+v", call)
		}

		if got.Model != defaultOpenAIModel || got.ToolChoice.Function.Name != intent.ToolName {
			t.Errorf("unexpected request model=%s tool_choice=%s", got.Model, got.ToolChoice.Function.Name)
		}
		roles := []string{got.Messages[0].Role, got.Messages[1].Role}
		if diff := cmp.Diff([]string{"system", "user"}, roles); diff != "" {
			t.Errorf("roles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("plain text answer is no call", func(t *testing.T) {
		c := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
		})
		call, err := c.CallTool(context.Background(), "s", "u", tool)
		if err != nil || call != nil {
			t.Errorf("expected nil call and no error, got %v %v", call, err)
		}
	})

	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusUnauthorized} {
		t.Run(http.StatusText(status)+" is unavailable", func(t *testing.T) {
			c := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			})
			_, err := c.CallTool(context.Background(), "s", "u", tool)
			if !intent.IsUnavailable(err) {
				t.Errorf("expected unavailable, got %v", err)
			}
		})
	}

	t.Run("cancelled context is not unavailable", func(t *testing.T) {
		c := newCaller(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.CallTool(ctx, "s", "u", tool)
		if !errors.Is(err, context.Canceled) || intent.IsUnavailable(err) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	config *genai.GenerateContentConfig
	model  string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func TestGeminiToolCaller(t *testing.T) {
	tool := intent.IntentTool()

	t.Run("returns the function call arguments", func(t *testing.T) {
		gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{Name: intent.ToolName, Args: map[string]any{"action": "list_devices", "query": ""}},
				}}},
			}},
		}}
		c := &GeminiToolCaller{models: gen, model: defaultGeminiModel}

		call, err := c.CallTool(context.Background(), "s", "what devices", tool)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var args map[string]any
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			t.Fatalf("arguments are not JSON: %v", err)
		}
		if call.Name != intent.ToolName || args["action"] != "list_devices" {
			t.Errorf("unexpected call %s %v", call.Name, args)
		}

		fc := gen.config.ToolConfig.FunctionCallingConfig
		if fc.Mode != genai.FunctionCallingConfigModeAny || fc.AllowedFunctionNames[0] != intent.ToolName {
			t.Errorf("expected the tool to be forced, got %+v", fc)
		}
	})

	t.Run("api errors are unavailable", func(t *testing.T) {
		c := &GeminiToolCaller{models: &fakeGenerator{err: genai.APIError{Code: 429, Message: "quota"}}}
		if _, err := c.CallTool(context.Background(), "s", "u", tool); !intent.IsUnavailable(err) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})

	t.Run("cancelled context is not unavailable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := &GeminiToolCaller{models: &fakeGenerator{err: context.Canceled}}
		if _, err := c.CallTool(ctx, "s", "u", tool); intent.IsUnavailable(err) {
			t.Errorf("expected plain cancellation, got %v", err)
		}
	})
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(intent.IntentTool().Parameters)

	if s.Type != genai.TypeObject {
		t.Errorf("type = %s, want object", s.Type)
	}
	if diff := cmp.Diff([]string{"action", "query"}, s.Required); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	action := s.Properties["action"]
	if action.Type != genai.TypeString || len(action.Enum) != 6 {
		t.Errorf("unexpected action schema %+v", action)
	}
	if s.Properties["extras"].Properties["is_mood_or_genre"].Type != genai.TypeBoolean {
		t.Error("expected boolean mood flag")
	}
}
