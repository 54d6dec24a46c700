// Package fetcher collects articles from financial news RSS feeds.
// Feed entries that only carry a teaser are enriched by downloading the
// publisher page and extracting the article body with per-domain
// selectors. When every feed fails, a set of embedded sample articles
// keeps the pipeline usable offline.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/valpere/newstran/internal"
	"github.com/valpere/newstran/internal/detector"
	"github.com/valpere/newstran/internal/parser"
)

const (
	// DefaultMaxArticles caps one collection run across all feeds.
	DefaultMaxArticles = 500

	// DefaultPerFeedLimit caps how many entries are taken per feed.
	DefaultPerFeedLimit = 30

	// DefaultTimeout bounds a single feed or page request.
	DefaultTimeout = 15 * time.Second

	// Feed entries with less inline HTML than this are treated as
	// teasers and enriched with a full page download.
	minFeedHTML = 500

	// Articles whose body ends up shorter than this are dropped.
	minArticleChars = 100

	// A largest-block candidate must carry at least this much text
	// before it is accepted as the article body.
	minBodyChars = 200

	// pageRetries bounds download attempts for one publisher page.
	pageRetries = 3

	// politeDelay spaces out consecutive page downloads.
	politeDelay = 500 * time.Millisecond

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// DefaultFeeds is the stock set of financial news feeds.
var DefaultFeeds = map[string]string{
	"reuters_business":   "https://feeds.reuters.com/reuters/businessNews",
	"reuters_technology": "https://feeds.reuters.com/reuters/technologyNews",
	"reuters_markets":    "https://feeds.reuters.com/reuters/USmarkets",
	"yahoo_finance":      "https://finance.yahoo.com/news/rssindex",
	"marketwatch":        "https://feeds.marketwatch.com/marketwatch/marketpulse/",
	"investing_com":      "https://www.investing.com/rss/news.rss",
	"benzinga":           "https://www.benzinga.com/feed",
	"seekingalpha":       "https://seekingalpha.com/feed.xml",
}

// articleSelectors maps a hostname fragment to the CSS selectors that
// locate the article body on that publisher's pages, in preference
// order.
var articleSelectors = map[string][]string{
	"reuters.com":      {"article.article-body", "div.article-body", "div[data-testid='ArticleBody']"},
	"marketwatch.com":  {"div.article__body", "div.story__body"},
	"yahoo.com":        {"div.caas-body", "article"},
	"investing.com":    {"div.articlePage", "section.article_WYSIWYG"},
	"benzinga.com":     {"div.article-content-body", "div.article__body"},
	"seekingalpha.com": {"div[data-test-id='article-content']", "div.article-content"},
}

const fallbackSelector = "article"

// Config controls one collection run. Zero values fall back to the
// package defaults.
type Config struct {
	// Feeds maps feed name to URL. Nil means DefaultFeeds.
	Feeds map[string]string

	PerFeedLimit int
	MaxArticles  int
	Timeout      time.Duration

	// Enrich downloads the full publisher page for teaser entries.
	Enrich bool

	// UseSamples returns the embedded sample articles when no feed
	// produced anything usable.
	UseSamples bool
}

// Fetcher collects and enriches articles. Construct with New and reuse
// across runs; the underlying HTTP client pools connections.
type Fetcher struct {
	cfg    Config
	client *http.Client
	feeds  *gofeed.Parser
	logger *zap.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)

	det      *detector.Detector
	skipLang string
}

func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Feeds == nil {
		cfg.Feeds = DefaultFeeds
	}
	if cfg.PerFeedLimit <= 0 {
		cfg.PerFeedLimit = DefaultPerFeedLimit
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = DefaultMaxArticles
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := &http.Client{Timeout: cfg.Timeout}
	feeds := gofeed.NewParser()
	feeds.UserAgent = userAgent
	feeds.Client = client

	return &Fetcher{
		cfg:    cfg,
		client: client,
		feeds:  feeds,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// SetSkipLanguage drops collected articles already written in the
// given ISO 639-1 language. The pipeline uses it to avoid translating
// items that are Korean at the source.
func (f *Fetcher) SetSkipLanguage(det *detector.Detector, iso string) {
	f.det = det
	f.skipLang = iso
}

// Fetch collects articles from all configured feeds. Per-feed failures
// are logged and skipped; the only returned error is context
// cancellation. Results are deduplicated by URL and capped at
// MaxArticles.
func (f *Fetcher) Fetch(ctx context.Context) ([]internal.Article, error) {
	names := make([]string, 0, len(f.cfg.Feeds))
	for name := range f.cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	var collected []internal.Article
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		collected = append(collected, f.fromFeed(ctx, name, f.cfg.Feeds[name])...)
		if len(collected) >= f.cfg.MaxArticles {
			break
		}
	}

	seen := make(map[string]bool, len(collected))
	unique := collected[:0]
	for _, art := range collected {
		if seen[art.URL] {
			continue
		}
		seen[art.URL] = true
		unique = append(unique, art)
	}
	if len(unique) > f.cfg.MaxArticles {
		unique = unique[:f.cfg.MaxArticles]
	}
	f.logger.Info("feeds collected", zap.Int("articles", len(unique)))

	if f.cfg.Enrich {
		f.enrich(ctx, unique)
	}

	valid := unique[:0]
	for _, art := range unique {
		if len(art.HTML) <= minArticleChars {
			f.logger.Debug("dropping thin article",
				zap.String("title", art.Title), zap.String("url", art.URL))
			continue
		}
		if f.skip(art) {
			continue
		}
		valid = append(valid, art)
	}

	if len(valid) == 0 && f.cfg.UseSamples {
		f.logger.Warn("no articles fetched from any feed, using embedded samples")
		samples := SampleArticles()
		if len(samples) > f.cfg.MaxArticles {
			samples = samples[:f.cfg.MaxArticles]
		}
		return samples, nil
	}

	return valid, nil
}

// fromFeed parses one feed and converts its entries to articles. Feed
// errors are logged, not returned; one dead feed must not sink the run.
func (f *Fetcher) fromFeed(ctx context.Context, name, url string) []internal.Article {
	feed, err := f.feeds.ParseURLWithContext(url, ctx)
	if err != nil {
		f.logger.Warn("feed fetch failed", zap.String("feed", name), zap.Error(err))
		return nil
	}

	items := feed.Items
	if len(items) > f.cfg.PerFeedLimit {
		items = items[:f.cfg.PerFeedLimit]
	}
	f.logger.Debug("feed parsed", zap.String("feed", name), zap.Int("entries", len(items)))

	articles := make([]internal.Article, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		published := item.Published
		if published == "" {
			published = item.Updated
		}
		// Some feeds carry the full article inline, most only a teaser.
		html := item.Content
		if html == "" {
			html = item.Description
		}
		articles = append(articles, internal.Article{
			ID:        uuid.NewString(),
			Title:     title,
			URL:       item.Link,
			Source:    name,
			Published: published,
			HTML:      html,
			FetchedAt: time.Now(),
		})
	}
	return articles
}

// enrich replaces teaser bodies with the full publisher page in place.
// Failed downloads leave the feed HTML untouched.
func (f *Fetcher) enrich(ctx context.Context, articles []internal.Article) {
	fetched := 0
	for i := range articles {
		if len(articles[i].HTML) >= minFeedHTML || articles[i].URL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return
		}
		body, err := f.FetchPage(ctx, articles[i].URL)
		if err != nil {
			f.logger.Warn("page fetch failed",
				zap.String("url", articles[i].URL), zap.Error(err))
		} else {
			articles[i].HTML = body
		}
		fetched++
		f.sleep(politeDelay)
	}
	f.logger.Info("full page fetches", zap.Int("count", fetched))
}

// FetchPage downloads one publisher page and extracts the article body.
// Transport and status errors are retried with exponential backoff;
// selector misses fall through to the largest-block heuristic within
// the same attempt.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := range pageRetries {
		if attempt > 0 {
			f.sleep(time.Duration(1<<(attempt-1)) * time.Second)
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		body, err := f.fetchPageOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Debug("page fetch attempt failed",
			zap.String("url", url), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return "", fmt.Errorf("failed to fetch %s after %d attempts: %w", url, pageRetries, lastErr)
}

func (f *Fetcher) fetchPageOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	return extractBody(doc, url), nil
}

// extractBody locates the article body in a parsed page. Domain
// selectors are tried first, then the largest article, main, or div
// element carrying real text, then the whole document body.
func extractBody(doc *goquery.Document, pageURL string) string {
	for _, sel := range selectorsFor(pageURL) {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if html, err := goquery.OuterHtml(node); err == nil {
			return html
		}
	}

	for _, tag := range []string{"article", "main", "div"} {
		var best *goquery.Selection
		bestLen := 0
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			if n := len(strings.TrimSpace(s.Text())); n > bestLen {
				best = s
				bestLen = n
			}
		})
		if best != nil && bestLen > minBodyChars {
			if html, err := goquery.OuterHtml(best); err == nil {
				return html
			}
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		if html, err := goquery.OuterHtml(body); err == nil {
			return html
		}
	}
	return ""
}

func selectorsFor(pageURL string) []string {
	for domain, selectors := range articleSelectors {
		if strings.Contains(pageURL, domain) {
			return selectors
		}
	}
	return []string{fallbackSelector}
}

// skip reports whether an article is already in the skip language.
// Undetectable text is kept; translation-time validation will catch
// real mismatches.
func (f *Fetcher) skip(art internal.Article) bool {
	if f.det == nil || f.skipLang == "" {
		return false
	}
	iso, ok := f.det.DetectISO(parser.PlainText(art.HTML))
	if !ok || !strings.EqualFold(iso, f.skipLang) {
		return false
	}
	f.logger.Debug("skipping article already in target language",
		zap.String("title", art.Title), zap.String("lang", iso))
	return true
}
