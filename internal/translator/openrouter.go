package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/valpere/newstran/internal/postprocess"
)

var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"qwen/qwen2.5-72b-instruct:free",
	"mistralai/mistral-nemo:free",
	"meta-llama/llama-3.1-8b-instruct:free",
}

// OpenRouterTranslator calls OpenRouter chat completions. Without a
// configured model it rotates through the free pool to spread rate
// limits; the glossary keeps terminology stable either way.
type OpenRouterTranslator struct {
	apiKey  string
	baseURL string
	model   string
	models  []string
	client  *http.Client
}

func NewOpenRouterTranslator(apiKey, baseURL, model string) *OpenRouterTranslator {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouterTranslator{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		models:  DefaultOpenRouterModels,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouterTranslator) Name() string {
	return "openrouter"
}

func (s *OpenRouterTranslator) pickModel() string {
	if s.model != "" {
		return s.model
	}
	if len(s.models) == 0 {
		return DefaultOpenRouterModels[0]
	}
	return s.models[rand.Intn(len(s.models))]
}

func (s *OpenRouterTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("openrouter api key required")
	}

	start := time.Now()
	model := s.pickModel()

	orReq := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": SystemPrompt},
			{"role": "user", "content": BuildChunkPrompt(req)},
		},
		"max_tokens": 8192,
	}

	jsonData, err := json.Marshal(orReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	httpReq.Header.Set("HTTP-Referer", "https://newstran.local")
	httpReq.Header.Set("X-Title", "NewsTran")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var orResp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(orResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openrouter")
	}
	if orResp.Model != "" {
		model = orResp.Model
	}

	return &Result{
		Text:    postprocess.Clean(orResp.Choices[0].Message.Content),
		Model:   model,
		Latency: time.Since(start),
	}, nil
}
