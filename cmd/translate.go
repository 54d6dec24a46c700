/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/newstran/internal"
	"github.com/valpere/newstran/internal/detector"
	"github.com/valpere/newstran/internal/fetcher"
	"github.com/valpere/newstran/internal/pipeline"
	"github.com/valpere/newstran/internal/store"
	"github.com/valpere/newstran/internal/verifier"
)

var (
	translateService string
	translateArticle string
	translateInput   string
	translateLimit   int
	translateOutDir  string
	translateFetch   bool
	translateSmooth  bool
	translateNoCache bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate stored articles with the chunked pipeline",
	Long: `Translate articles from English to Korean while preserving their
HTML structure.

Articles are loaded from the store (everything not yet translated, or
one article via --article, or a local HTML file via --input). Each
article is cleaned, segmented into chunks, and translated chunk by
chunk; every call carries the title, a terminology glossary, and the
tail of the previous chunk's translation. The assembled result is
verified and written to the store and to a standalone HTML page.

Available services:
  - anthropic   Anthropic Messages API (requires API key)
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (requires API key)

An unchanged article hits the translation memory and is not sent to
the service again; disable with --no-cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if translateArticle != "" && translateInput != "" {
			return fmt.Errorf("--article and --input cannot be combined")
		}
		if translateService == "" {
			translateService = cfg.Services.Default
		}
		if translateOutDir == "" {
			translateOutDir = cfg.OutputDir
		}
		if translateSmooth {
			cfg.Pipeline.Smooth = true
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		srcLang := cfg.Pipeline.SourceLang
		tgtLang := cfg.Pipeline.TargetLang

		articles, local, err := loadArticles(ctx, db)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			fmt.Println("Nothing to translate. Run \"newstran fetch\" first or pass --fetch.")
			return nil
		}

		// Serve unchanged articles from translation memory before
		// spending any service calls.
		pages := 0
		cached := 0
		var pending []internal.Article
		for _, art := range articles {
			if translateNoCache {
				pending = append(pending, art)
				continue
			}
			hit, found, cacheErr := db.GetCachedTranslation(ctx, art.HTML, srcLang, tgtLang)
			if cacheErr != nil || !found {
				pending = append(pending, art)
				continue
			}
			cached++
			if !local {
				report := verifier.Verify(art.HTML, hit)
				_ = db.SaveTranslation(ctx, art.ID, string(pipeline.StatusCompleted), "memory", hit, "", 0)
				_ = db.SaveVerification(ctx, art.ID, report.Pass, report.Score, report.Issues)
			}
			if err := writeResultPage(translateOutDir, pages, art.Title, art.Source, art.URL, art.Published, hit); err != nil {
				return err
			}
			pages++
		}
		if cached > 0 {
			fmt.Fprintf(os.Stderr, "Served %d articles from translation memory\n", cached)
		}

		var results []pipeline.ArticleResult
		if len(pending) > 0 {
			eng, err := buildEngine(translateService)
			if err != nil {
				return err
			}
			if terms, err := db.GetGlossaryTerms(ctx, srcLang, tgtLang); err == nil && len(terms) > 0 {
				eng.SetGlossaryTerms(terms)
				fmt.Fprintf(os.Stderr, "Using %d curated glossary terms\n", len(terms))
			}

			fmt.Fprintf(os.Stderr, "Translating %d articles with %s...\n", len(pending), translateService)
			results = eng.Run(ctx, pending)
		}

		completed := 0
		failed := 0
		for i, res := range results {
			art := pending[i]
			switch res.Status {
			case pipeline.StatusCompleted:
				completed++
				if !local {
					_ = db.SaveTranslation(ctx, art.ID, string(res.Status), translateService, res.TranslatedHTML, "", len(res.Chunks))
					for _, c := range res.Chunks {
						_ = db.SaveChunkResult(ctx, art.ID, c.Index, c.Text, c.PrevContext, c.Model)
					}
					_ = db.SaveVerification(ctx, art.ID, res.Report.Pass, res.Report.Score, res.Report.Issues)
				}
				// Only verified translations are worth reusing.
				if res.Report.Pass {
					_ = db.SaveToMemory(ctx, art.HTML, srcLang, tgtLang, res.TranslatedHTML, res.Title, translateService)
				}
				if err := writeResultPage(translateOutDir, pages, res.Title, art.Source, art.URL, art.Published, res.TranslatedHTML); err != nil {
					return err
				}
				pages++
			case pipeline.StatusFailed:
				failed++
				if !local {
					_ = db.SaveTranslation(ctx, art.ID, string(res.Status), translateService, "", res.Error, 0)
				}
			}
		}

		if len(results) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCHUNKS\tSCORE\tVERIFIED\tTITLE")
			for _, res := range results {
				verdict := "-"
				score := "-"
				if res.Status == pipeline.StatusCompleted {
					verdict = fmt.Sprintf("%v", res.Report.Pass)
					score = fmt.Sprintf("%.0f", res.Report.Score)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					res.Status, len(res.Chunks), score, verdict, truncateText(res.Title, 60))
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		fmt.Printf("\nTranslated %d articles (%d from cache, %d failed).\n", completed+cached, cached, failed)
		if pages > 0 {
			fmt.Printf("Output pages written to %s\n", translateOutDir)
		}
		if failed > 0 {
			return fmt.Errorf("%d articles failed", failed)
		}
		return nil
	},
}

// loadArticles resolves the article set for this run. The bool result
// marks a local file input, which is never written back to the store.
func loadArticles(ctx context.Context, db *store.Store) ([]internal.Article, bool, error) {
	if translateInput != "" {
		raw, err := os.ReadFile(translateInput)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read input file: %w", err)
		}
		art := internal.Article{
			ID:     uuid.NewString(),
			Title:  filepath.Base(translateInput),
			Source: "local",
			HTML:   string(raw),
		}
		return []internal.Article{art}, true, nil
	}

	if translateArticle != "" {
		art, err := db.GetArticle(ctx, translateArticle)
		if err != nil {
			return nil, false, err
		}
		return []internal.Article{art}, false, nil
	}

	if translateFetch {
		f := fetcher.New(cfg.FetcherConfig(), logger)
		if cfg.Fetch.SkipTargetLanguage && cfg.Pipeline.SourceLang == "en" && cfg.Pipeline.TargetLang == "ko" {
			f.SetSkipLanguage(detector.NewEnglishKorean(), cfg.Pipeline.TargetLang)
		}
		fetched, err := f.Fetch(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("fetch failed: %w", err)
		}
		for _, art := range fetched {
			if _, err := db.SaveArticle(ctx, art); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save %q: %v\n", art.Title, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Fetched %d articles\n", len(fetched))
	}

	articles, err := db.UntranslatedArticles(ctx, translateLimit)
	if err != nil {
		return nil, false, err
	}
	return articles, false, nil
}

const resultPageTemplate = `<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <style>
    body { font-family: 'Nanum Gothic', sans-serif; max-width: 800px; margin: 40px auto; line-height: 1.8; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 20px; }
    .original-title { font-size: 0.8em; color: #999; }
  </style>
</head>
<body>
  <div class="meta">
    <strong>출처:</strong> %s |
    <strong>원문 URL:</strong> <a href="%s">%s</a> |
    <strong>발행일:</strong> %s
  </div>
  <h1>%s</h1>
  <div class="original-title">원문 제목: %s</div>
  <hr>
  <div class="article-body">
    %s
  </div>
</body>
</html>
`

// writeResultPage renders one translated article as a standalone page
// named by its position in the run.
func writeResultPage(dir string, seq int, title, source, url, published, body string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	page := fmt.Sprintf(resultPageTemplate,
		html.EscapeString(title),
		html.EscapeString(source),
		html.EscapeString(url), html.EscapeString(url),
		html.EscapeString(published),
		html.EscapeString(title),
		html.EscapeString(title),
		body)

	path := filepath.Join(dir, fmt.Sprintf("%04d.html", seq))
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return fmt.Errorf("failed to write output page: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&translateService, "service", "", "Translation service (default from config)")
	translateCmd.Flags().StringVar(&translateArticle, "article", "", "Translate one stored article by ID")
	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Translate a local HTML file instead of stored articles")
	translateCmd.Flags().IntVarP(&translateLimit, "limit", "n", 0, "Max articles to translate this run (0 = all untranslated)")
	translateCmd.Flags().StringVarP(&translateOutDir, "output", "o", "", "Output directory for HTML pages (default from config)")
	translateCmd.Flags().BoolVar(&translateFetch, "fetch", false, "Fetch fresh articles before translating")
	translateCmd.Flags().BoolVar(&translateSmooth, "smooth", false, "Smooth chunk seams with an extra coherence pass")
	translateCmd.Flags().BoolVar(&translateNoCache, "no-cache", false, "Disable the translation memory cache")
}
