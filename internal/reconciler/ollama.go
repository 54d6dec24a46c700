package reconciler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/newstran/internal/placeholder"
	"github.com/valpere/newstran/internal/postprocess"
)

// OllamaSmoother uses a local Ollama model as a seam editor.
type OllamaSmoother struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaSmoother(model, baseURL string) *OllamaSmoother {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaSmoother{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Smooth sends the protected seam text to the LLM with a minimal-edit
// prompt and returns the rewrite. An empty model response returns the
// seam unchanged.
func (s *OllamaSmoother) Smooth(ctx context.Context, seam string) (string, error) {
	reqBody := ollamaRequest{
		Model:  s.model,
		Prompt: buildSeamPrompt(seam),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal smoothing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create smoothing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("smoothing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("smoother returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("decode smoothing response: %w", err)
	}

	smoothed := postprocess.Clean(ollamaResp.Response)
	if smoothed == "" {
		return seam, nil
	}
	return smoothed, nil
}

func buildSeamPrompt(seam string) string {
	return fmt.Sprintf(`아래는 한국어로 번역된 뉴스 기사에서 두 섹션이 만나는 연결 부분입니다.
연결부에 어색한 표현, 용어 불일치, 문체 차이가 있다면 최소한으로만 수정하세요.
문장의 의미, 숫자, 사실 관계는 절대 바꾸지 마세요.
%s
수정한 텍스트만 출력하고 다른 설명은 추가하지 마세요.

%s`, placeholder.InstructionHint(), seam)
}
