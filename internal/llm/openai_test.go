package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Briar") {
			t.Errorf("prompt missing speaker: %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 42},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testRequest() EmbellishRequest {
	return EmbellishRequest{Speaker: "Briar", Line: "Corin has been quiet all day.", Names: []string{"Corin"}}
}

func TestOpenAIProvider_Embellish_Success(t *testing.T) {
	server := chatServer(t, `  "Corin has barely said a word since sunrise."  `)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Embellish(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Embellish failed: %v", err)
	}
	if resp.Line != "Corin has barely said a word since sunrise." {
		t.Errorf("Unexpected line: %q", resp.Line)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Embellish_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
		}},
		{"rate limit", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{malformed json`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
			if err != nil {
				t.Fatalf("Failed to create provider: %v", err)
			}
			if _, err := provider.Embellish(context.Background(), testRequest()); err == nil {
				t.Fatal("Expected error, got nil")
			}
		})
	}
}

func TestOpenAIProvider_Embellish_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := provider.Embellish(ctx, testRequest()); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Errorf("empty provider: got %v, %v; want nil, nil", p, err)
	}

	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("expected missing API key error")
	}

	p, err = NewProvider(Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name = %q", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected unknown provider error")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(testRequest())
	for _, want := range []string{"Briar", "Corin has been quiet all day.", "Only these names may appear: Corin"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(BuildPrompt(EmbellishRequest{Speaker: "x", Line: "y"}), "(none)") {
		t.Error("empty names should render (none)")
	}
}
