package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterTranslator_Translate_Success(t *testing.T) {
	var gotPath, gotAuth, gotTitle string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "qwen/qwen2.5-72b-instruct:free",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "<p>주가가 4% 올랐다.</p>"}},
			},
		})
	}))
	defer server.Close()

	svc := &OpenRouterTranslator{
		apiKey:  "test-key",
		baseURL: server.URL,
		model:   "qwen/qwen2.5-72b-instruct:free",
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), chunkRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("expected /chat/completions, got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotTitle != "NewsTran" {
		t.Errorf("expected X-Title header, got %q", gotTitle)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("expected system+user messages, got %+v", gotReq.Messages)
	}

	if result.Text != "<p>주가가 4% 올랐다.</p>" {
		t.Errorf("unexpected translation %q", result.Text)
	}
	if result.Model != "qwen/qwen2.5-72b-instruct:free" {
		t.Errorf("unexpected model %q", result.Model)
	}
}

func TestOpenRouterTranslator_Translate_NoAPIKey(t *testing.T) {
	svc := NewOpenRouterTranslator("", "", "")

	_, err := svc.Translate(context.Background(), chunkRequest())
	if err == nil {
		t.Error("expected error when no API key")
	}
}

func TestOpenRouterTranslator_Translate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := &OpenRouterTranslator{apiKey: "test-key", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	var retryable *RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if retryable.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", retryable.StatusCode)
	}
}

func TestOpenRouterTranslator_PickModel_ConfiguredWins(t *testing.T) {
	svc := NewOpenRouterTranslator("k", "", "my/model")
	for i := 0; i < 10; i++ {
		if got := svc.pickModel(); got != "my/model" {
			t.Fatalf("expected configured model, got %q", got)
		}
	}
}

func TestOpenRouterTranslator_PickModel_RotatesPool(t *testing.T) {
	svc := NewOpenRouterTranslator("k", "", "")
	for i := 0; i < 20; i++ {
		model := svc.pickModel()
		found := false
		for _, m := range DefaultOpenRouterModels {
			if m == model {
				found = true
			}
		}
		if !found {
			t.Fatalf("model %q not in default pool", model)
		}
	}
}

func TestOpenRouterTranslator_Name(t *testing.T) {
	if got := NewOpenRouterTranslator("k", "", "").Name(); got != "openrouter" {
		t.Errorf("expected 'openrouter', got %q", got)
	}
}
