package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicTranslator_Translate_Success(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotReq anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "claude-sonnet-4-20250514",
			"content": []map[string]string{
				{"type": "text", "text": "```html\n<p>주가가 4% 올랐다.</p>\n```"},
			},
		})
	}))
	defer server.Close()

	svc := &AnthropicTranslator{
		apiKey:  "test-key",
		model:   "claude-sonnet-4-20250514",
		baseURL: server.URL,
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), chunkRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/messages" {
		t.Errorf("expected /v1/messages, got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("expected version header %q, got %q", anthropicVersion, gotVersion)
	}
	if gotReq.System != SystemPrompt {
		t.Error("expected system prompt in system field")
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "Market reaction") {
		t.Errorf("expected chunk prompt as user message, got %+v", gotReq.Messages)
	}

	if result.Text != "<p>주가가 4% 올랐다.</p>" {
		t.Errorf("expected cleaned translation, got %q", result.Text)
	}
	if result.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected model %q", result.Model)
	}
	if result.Latency <= 0 {
		t.Error("expected positive latency")
	}
}

func TestAnthropicTranslator_Translate_NoAPIKey(t *testing.T) {
	svc := NewAnthropicTranslator("", "", "")

	_, err := svc.Translate(context.Background(), chunkRequest())
	if err == nil {
		t.Error("expected error when no API key")
	}
}

func TestAnthropicTranslator_Translate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	svc := &AnthropicTranslator{apiKey: "test-key", model: "m", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	var retryable *RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if retryable.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", retryable.StatusCode)
	}
}

func TestAnthropicTranslator_Translate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := &AnthropicTranslator{apiKey: "test-key", model: "m", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	var retryable *RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
}

func TestAnthropicTranslator_Translate_BadRequestNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	svc := &AnthropicTranslator{apiKey: "test-key", model: "m", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	if err == nil {
		t.Fatal("expected error for status 400")
	}
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		t.Error("status 400 must not be retryable")
	}
}

func TestAnthropicTranslator_Translate_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "overloaded_error", "message": "try later"},
		})
	}))
	defer server.Close()

	svc := &AnthropicTranslator{apiKey: "test-key", model: "m", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	if err == nil || !strings.Contains(err.Error(), "overloaded_error") {
		t.Errorf("expected api error surfaced, got %v", err)
	}
}

func TestAnthropicTranslator_Translate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"content": []interface{}{}})
	}))
	defer server.Close()

	svc := &AnthropicTranslator{apiKey: "test-key", model: "m", baseURL: server.URL, client: server.Client()}

	_, err := svc.Translate(context.Background(), chunkRequest())
	if err == nil {
		t.Error("expected error for empty content")
	}
}

func TestAnthropicTranslator_Name(t *testing.T) {
	if got := NewAnthropicTranslator("k", "", "").Name(); got != "anthropic" {
		t.Errorf("expected 'anthropic', got %q", got)
	}
}

func TestNewAnthropicTranslator_Defaults(t *testing.T) {
	svc := NewAnthropicTranslator("k", "", "")
	if svc.model != DefaultAnthropicModel {
		t.Errorf("expected default model, got %q", svc.model)
	}
	if svc.baseURL != "https://api.anthropic.com" {
		t.Errorf("unexpected base URL %q", svc.baseURL)
	}
}
