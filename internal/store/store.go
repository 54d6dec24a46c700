// Package store persists fetched articles, translation runs, and the
// terminology glossary in a local SQLite database. It also keeps the
// translation memory: an article whose content hash is already present
// for a language pair is served from memory instead of being
// re-translated.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/newstran/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		published TEXT,
		html TEXT NOT NULL,
		fetched_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS translations (
		article_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		service TEXT,
		translated_html TEXT,
		chunk_count INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP,
		FOREIGN KEY (article_id) REFERENCES articles(id)
	);

	-- chunk_results keeps the per-chunk output and the trailing context
	-- each chunk was given, for after-the-fact inspection of a run
	CREATE TABLE IF NOT EXISTS chunk_results (
		article_id TEXT NOT NULL,
		chunk_idx INTEGER NOT NULL,
		translated_text TEXT NOT NULL,
		prev_context TEXT,
		model TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (article_id, chunk_idx),
		FOREIGN KEY (article_id) REFERENCES articles(id)
	);

	CREATE TABLE IF NOT EXISTS verification_reports (
		article_id TEXT PRIMARY KEY,
		pass BOOLEAN NOT NULL,
		score REAL NOT NULL,
		issues TEXT,
		created_at TIMESTAMP,
		FOREIGN KEY (article_id) REFERENCES articles(id)
	);

	-- translation_memory is keyed by the content hash of the source HTML
	-- so an unchanged article is never translated twice
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		title TEXT,
		translated_html TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP,
		created_at TIMESTAMP,
		UNIQUE(content_hash, source_lang, target_lang)
	);

	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_lang, target_lang, source_term)
	);

	CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_translations_status ON translations(status);
	CREATE INDEX IF NOT EXISTS idx_chunks_article ON chunk_results(article_id);
	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(content_hash, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveArticle inserts an article, deduplicating by URL. Returns true
// when the article was new.
func (s *Store) SaveArticle(ctx context.Context, a internal.Article) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO articles (id, title, url, source, published, html, fetched_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.URL, a.Source, a.Published, a.HTML, a.FetchedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) GetArticle(ctx context.Context, id string) (internal.Article, error) {
	var a internal.Article
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, url, source, published, html, fetched_at FROM articles WHERE id = ?`,
		id).Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.Published, &a.HTML, &a.FetchedAt)
	if err == sql.ErrNoRows {
		return internal.Article{}, fmt.Errorf("article not found: %s", id)
	}
	return a, err
}

// ListArticles returns stored articles, most recently fetched first.
// limit ≤ 0 returns everything.
func (s *Store) ListArticles(ctx context.Context, limit int) ([]internal.Article, error) {
	query := `SELECT id, title, url, source, published, html, fetched_at FROM articles ORDER BY fetched_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []internal.Article
	for rows.Next() {
		var a internal.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.Published, &a.HTML, &a.FetchedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// UntranslatedArticles returns articles without a completed translation,
// most recently fetched first. limit ≤ 0 returns everything.
func (s *Store) UntranslatedArticles(ctx context.Context, limit int) ([]internal.Article, error) {
	query := `SELECT a.id, a.title, a.url, a.source, a.published, a.html, a.fetched_at
		FROM articles a
		LEFT JOIN translations t ON t.article_id = a.id AND t.status = 'completed'
		WHERE t.article_id IS NULL
		ORDER BY a.fetched_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []internal.Article
	for rows.Next() {
		var a internal.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.Published, &a.HTML, &a.FetchedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// SaveTranslation records the outcome of a pipeline run for one article.
// A re-run replaces the previous outcome and clears its chunk rows.
func (s *Store) SaveTranslation(ctx context.Context, articleID, status, service, translatedHTML, errMsg string, chunkCount int) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM chunk_results WHERE article_id = ?`, articleID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translations (article_id, status, service, translated_html, chunk_count, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		articleID, status, service, translatedHTML, chunkCount, errMsg, time.Now())
	return err
}

func (s *Store) SaveChunkResult(ctx context.Context, articleID string, chunkIdx int, translatedText, prevContext, model string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunk_results (article_id, chunk_idx, translated_text, prev_context, model) VALUES (?, ?, ?, ?, ?)`,
		articleID, chunkIdx, translatedText, prevContext, model)
	return err
}

// ChunkRow is a row from the chunk_results table.
type ChunkRow struct {
	ChunkIdx       int
	TranslatedText string
	PrevContext    string
	Model          string
}

// ChunkResults returns the stored chunk outputs for an article in chunk
// order.
func (s *Store) ChunkResults(ctx context.Context, articleID string) ([]ChunkRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_idx, translated_text, prev_context, model FROM chunk_results WHERE article_id = ? ORDER BY chunk_idx`,
		articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ChunkRow
	for rows.Next() {
		var c ChunkRow
		if err := rows.Scan(&c.ChunkIdx, &c.TranslatedText, &c.PrevContext, &c.Model); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (s *Store) SaveVerification(ctx context.Context, articleID string, pass bool, score float64, issues []string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO verification_reports (article_id, pass, score, issues, created_at) VALUES (?, ?, ?, ?, ?)`,
		articleID, pass, score, strings.Join(issues, "\n"), time.Now())
	return err
}

// VerificationEntry is a row from the verification_reports table.
type VerificationEntry struct {
	ArticleID string
	Pass      bool
	Score     float64
	Issues    []string
	CreatedAt time.Time
}

// Verification returns the stored report for an article, if any.
func (s *Store) Verification(ctx context.Context, articleID string) (VerificationEntry, bool, error) {
	var e VerificationEntry
	var issues string
	err := s.db.QueryRowContext(ctx,
		`SELECT article_id, pass, score, issues, created_at FROM verification_reports WHERE article_id = ?`,
		articleID).Scan(&e.ArticleID, &e.Pass, &e.Score, &issues, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return VerificationEntry{}, false, nil
	}
	if err != nil {
		return VerificationEntry{}, false, err
	}
	if issues != "" {
		e.Issues = strings.Split(issues, "\n")
	}
	return e, true, nil
}

// TranslatedArticle pairs a completed translation with its source, for
// re-verification and page generation.
type TranslatedArticle struct {
	ArticleID      string
	Title          string
	URL            string
	Source         string
	Published      string
	SourceHTML     string
	TranslatedHTML string
}

// Completed returns all completed translations joined with their source
// articles, most recently fetched first.
func (s *Store) Completed(ctx context.Context) ([]TranslatedArticle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.title, a.url, a.source, a.published, a.html, t.translated_html
		FROM translations t
		JOIN articles a ON a.id = t.article_id
		WHERE t.status = 'completed'
		ORDER BY a.fetched_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TranslatedArticle
	for rows.Next() {
		var r TranslatedArticle
		if err := rows.Scan(&r.ArticleID, &r.Title, &r.URL, &r.Source, &r.Published, &r.SourceHTML, &r.TranslatedHTML); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetCachedTranslation looks up the translation memory by content hash.
// A hit bumps the usage counter and last-used time.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceHTML, sourceLang, targetLang string) (string, bool, error) {
	hash := contentHash(sourceHTML)

	var translated string
	var invalidated bool
	err := s.db.QueryRowContext(ctx,
		`SELECT translated_html, invalidated FROM translation_memory WHERE content_hash = ? AND source_lang = ? AND target_lang = ?`,
		hash, sourceLang, targetLang).Scan(&translated, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE content_hash = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), hash, sourceLang, targetLang)

	return translated, true, err
}

func (s *Store) SaveToMemory(ctx context.Context, sourceHTML, sourceLang, targetLang, translatedHTML, title, serviceUsed string) error {
	id := fmt.Sprintf("mem_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, content_hash, source_lang, target_lang, title, translated_html, service_used, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, contentHash(sourceHTML), sourceLang, targetLang, title, translatedHTML, serviceUsed, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	ContentHash string
	SourceLang  string
	TargetLang  string
	Title       string
	ServiceUsed string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_hash, source_lang, target_lang, title, service_used, usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.ContentHash, &e.SourceLang, &e.TargetLang, &e.Title, &e.ServiceUsed, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GlossaryEntry represents a row in the glossary table.
type GlossaryEntry struct {
	ID         string
	SourceLang string
	TargetLang string
	SourceTerm string
	TargetTerm string
	CreatedAt  time.Time
}

// AddGlossaryTerm inserts or replaces a glossary entry.
func (s *Store) AddGlossaryTerm(ctx context.Context, sourceLang, targetLang, sourceTerm, targetTerm string) error {
	id := fmt.Sprintf("gl_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, source_lang, target_lang, source_term, target_term, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, sourceLang, targetLang, sourceTerm, targetTerm, time.Now())
	return err
}

// GetGlossaryTerms returns all glossary terms for a language pair as a
// source-term → target-term map, ready to merge into an article glossary.
func (s *Store) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_term, target_term FROM glossary WHERE source_lang = ? AND target_lang = ?`,
		sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return nil, err
		}
		terms[src] = tgt
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns all glossary entries, optionally filtered by language
// pair (pass empty strings to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]GlossaryEntry, error) {
	query := `SELECT id, source_lang, target_lang, source_term, target_term, created_at FROM glossary`
	var args []interface{}

	switch {
	case sourceLang != "" && targetLang != "":
		query += ` WHERE source_lang = ? AND target_lang = ?`
		args = append(args, sourceLang, targetLang)
	case sourceLang != "":
		query += ` WHERE source_lang = ?`
		args = append(args, sourceLang)
	case targetLang != "":
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY source_lang, target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.SourceLang, &e.TargetLang, &e.SourceTerm, &e.TargetTerm, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	return err
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// so byte-level variations of the same content hash identically.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// contentHash keys the translation memory on the normalized source HTML.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(sum[:])
}
