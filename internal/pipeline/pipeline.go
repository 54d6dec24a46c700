// Package pipeline drives the per-article translation flow: parse,
// segment, build the glossary once, translate chunks strictly in order
// with trailing context, reconcile the seams, and verify the result.
// Articles are independent; the engine fans out across them while
// keeping chunk translation within one article sequential.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/newstran/internal"
	"github.com/valpere/newstran/internal/chunker"
	"github.com/valpere/newstran/internal/glossary"
	"github.com/valpere/newstran/internal/parser"
	"github.com/valpere/newstran/internal/reconciler"
	"github.com/valpere/newstran/internal/translator"
	"github.com/valpere/newstran/internal/validator"
	"github.com/valpere/newstran/internal/verifier"
)

const (
	DefaultCallTimeout = 120 * time.Second
	DefaultConcurrency = 4
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ChunkResult records one chunk translation together with the trailing
// context that was supplied, for auditability.
type ChunkResult struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	PrevContext string `json:"prev_context"`
	Model       string `json:"model"`
}

// ArticleResult is the per-article outcome surfaced to callers. A
// failed article carries no partial translation: chunk results are
// withheld unless the whole article completed.
type ArticleResult struct {
	ArticleID      string          `json:"article_id"`
	Title          string          `json:"title"`
	TranslatedHTML string          `json:"translated_html,omitempty"`
	Chunks         []ChunkResult   `json:"chunks,omitempty"`
	Report         verifier.Report `json:"report"`
	Status         Status          `json:"status"`
	Error          string          `json:"error,omitempty"`
}

type Config struct {
	MaxWords       int           `mapstructure:"max_words" json:"max_words"`
	OverlapWords   int           `mapstructure:"overlap_words" json:"overlap_words"`
	LeadParagraphs int           `mapstructure:"lead_paragraphs" json:"lead_paragraphs"`
	CallTimeout    time.Duration `mapstructure:"call_timeout" json:"call_timeout"`
	Concurrency    int           `mapstructure:"concurrency" json:"concurrency"`
	SourceLang     string        `mapstructure:"source_lang" json:"source_lang"`
	TargetLang     string        `mapstructure:"target_lang" json:"target_lang"`
}

type Engine struct {
	translator translator.Translator
	reconciler *reconciler.Reconciler
	validator  *validator.Validator
	terms      map[string]string
	cfg        Config
	logger     *zap.Logger
	backoff    func(attempt int) time.Duration
}

func New(t translator.Translator, cfg Config, logger *zap.Logger) *Engine {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = chunker.DefaultMaxWords
	}
	if cfg.OverlapWords <= 0 {
		cfg.OverlapWords = chunker.DefaultOverlapWords
	}
	if cfg.LeadParagraphs <= 0 {
		cfg.LeadParagraphs = glossary.DefaultLeadParagraphs
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = "en"
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = "ko"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		translator: t,
		cfg:        cfg,
		logger:     logger,
		backoff:    Backoff,
	}
}

// SetReconciler enables seam smoothing between chunk translations.
func (e *Engine) SetReconciler(r *reconciler.Reconciler) {
	e.reconciler = r
}

// SetValidator enables the advisory post-assembly language check.
func (e *Engine) SetValidator(v *validator.Validator) {
	e.validator = v
}

// SetGlossaryTerms merges curated term mappings into every article's
// extracted glossary. Curated targets win over extracted ones.
func (e *Engine) SetGlossaryTerms(terms map[string]string) {
	e.terms = terms
}

// Run translates the articles with bounded fan-out. Failures are
// isolated: one article's error is recorded in its own result and
// never cancels the others. Results are positionally aligned with the
// input.
func (e *Engine) Run(ctx context.Context, articles []internal.Article) []ArticleResult {
	results := make([]ArticleResult, len(articles))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, article := range articles {
		g.Go(func() error {
			results[i] = e.TranslateArticle(ctx, article)
			return nil
		})
	}
	g.Wait()
	return results
}

// TranslateArticle runs the full pipeline for one article. Chunks are
// translated strictly in order because each request embeds the trailing
// context of the previous chunk's output. Completion is all-or-nothing:
// any chunk failure discards the partial translation.
func (e *Engine) TranslateArticle(ctx context.Context, article internal.Article) ArticleResult {
	log := e.logger.With(zap.String("article_id", article.ID))

	result := ArticleResult{
		ArticleID: article.ID,
		Title:     article.Title,
		Status:    StatusFailed,
	}

	doc, err := parser.Parse(article.HTML)
	if err != nil {
		result.Error = fmt.Sprintf("parse: %v", err)
		return result
	}
	if doc.Title == "" {
		doc.Title = article.Title
	}

	chunks := chunker.Segment(doc, e.cfg.MaxWords)
	if len(chunks) == 0 {
		// Nothing to translate. Completed, with a vacuously passing
		// report.
		result.Status = StatusCompleted
		result.Report = verifier.Report{Pass: true, Score: 100}
		return result
	}

	gloss := glossary.Build(doc, e.cfg.LeadParagraphs)
	gloss.Merge(e.terms)
	glossText := gloss.Format()
	window := chunker.NewContextWindow(e.cfg.OverlapWords)

	translations := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		req := translator.Request{
			ChunkHTML:    chunk.HTML(),
			Title:        doc.Title,
			Source:       article.Source,
			ChunkIndex:   chunk.Index,
			TotalChunks:  len(chunks),
			GlossaryText: glossText,
			PrevContext:  window.Current(),
			SourceLang:   e.cfg.SourceLang,
			TargetLang:   e.cfg.TargetLang,
		}

		res, err := e.translateChunk(ctx, req)
		if err != nil {
			log.Error("chunk translation failed",
				zap.Int("chunk", chunk.Index), zap.Error(err))
			result.Chunks = nil
			result.Error = fmt.Sprintf("chunk %d: %v", chunk.Index, err)
			return result
		}

		window.Advance(res.Text)
		translations = append(translations, res.Text)
		result.Chunks = append(result.Chunks, ChunkResult{
			Index:       chunk.Index,
			Text:        res.Text,
			PrevContext: req.PrevContext,
			Model:       res.Model,
		})
	}

	assembled, err := e.assemble(ctx, translations)
	if err != nil {
		result.Chunks = nil
		result.Error = fmt.Sprintf("reconcile: %v", err)
		return result
	}

	result.TranslatedHTML = assembled
	result.Report = verifier.Verify(doc.HTML(), assembled)
	result.Status = StatusCompleted

	if !result.Report.Pass {
		log.Warn("verification flagged translation",
			zap.Float64("score", result.Report.Score),
			zap.Strings("issues", result.Report.Issues))
	}
	if e.validator != nil {
		if ok, err := e.validator.IsValid(assembled, e.cfg.TargetLang); !ok {
			log.Warn("language validation failed", zap.Error(err))
		}
	}

	return result
}

func (e *Engine) assemble(ctx context.Context, translations []string) (string, error) {
	if e.reconciler == nil {
		return reconciler.Assemble(translations), nil
	}
	return e.reconciler.Reconcile(ctx, translations)
}

// translateChunk wraps one chunk call with the per-call timeout and
// bounded retries. Only retryable failures back off and try again.
func (e *Engine) translateChunk(ctx context.Context, req translator.Request) (*translator.Result, error) {
	var lastErr error
	for attempt := range MaxRetries {
		res, err := e.callOnce(ctx, req)
		if err == nil {
			return res, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		e.logger.Warn("retryable translation error",
			zap.Int("chunk", req.ChunkIndex),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-time.After(e.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("translation failed after %d attempts: %w", MaxRetries, lastErr)
}

func (e *Engine) callOnce(ctx context.Context, req translator.Request) (*translator.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	res, err := e.translator.Translate(callCtx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, &translator.RetryableError{Message: "empty translation"}
	}
	return res, nil
}
