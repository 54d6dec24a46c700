package translator

import (
	"context"
	"fmt"
	"time"
)

// Request carries one chunk translation call. ChunkHTML is the chunk
// markup verbatim; the prompt instructs the model to translate text
// content only and leave every tag in place. ChunkIndex is zero-based.
type Request struct {
	ChunkHTML    string `json:"chunk_html"`
	Title        string `json:"title"`
	Source       string `json:"source"`
	ChunkIndex   int    `json:"chunk_index"`
	TotalChunks  int    `json:"total_chunks"`
	GlossaryText string `json:"glossary_text"`
	PrevContext  string `json:"prev_context"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
}

// Result is one provider response, already cleaned of wrapper noise.
type Result struct {
	Text    string        `json:"text"`
	Model   string        `json:"model"`
	Latency time.Duration `json:"latency"`
}

// Translator is implemented by each LLM provider.
type Translator interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
}

// RetryableError indicates a transient provider failure (rate limit,
// server error). The caller owns backoff and retry; any other error
// fails the document immediately.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
