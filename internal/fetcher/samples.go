package fetcher

import (
	"embed"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/newstran/internal"
)

//go:embed samples/*.html
var sampleFS embed.FS

var sampleMeta = []struct {
	file      string
	title     string
	url       string
	source    string
	published string
}{
	{
		file:      "nvidia_market_cap.html",
		title:     "NVIDIA Surpasses $3 Trillion Market Cap as AI Chip Demand Accelerates",
		url:       "https://www.reuters.com/technology/nvidia-market-cap-sample",
		source:    "reuters_technology",
		published: "2026-02-21T09:30:00Z",
	},
	{
		file:      "fed_rates.html",
		title:     "Federal Reserve Holds Rates Steady, Signals Two Cuts Possible in 2026",
		url:       "https://www.reuters.com/markets/us/fed-rates-sample",
		source:    "reuters_business",
		published: "2026-02-21T14:00:00Z",
	},
	{
		file:      "apple_us_investment.html",
		title:     "Apple to Invest $500 Billion in U.S. Manufacturing Over Next Four Years",
		url:       "https://www.benzinga.com/news/apple-us-investment-sample",
		source:    "benzinga",
		published: "2026-02-20T11:00:00Z",
	},
	{
		file:      "tesla_q4_deliveries.html",
		title:     "Tesla Reports Record Q4 Vehicle Deliveries Despite Price War Pressures",
		url:       "https://www.benzinga.com/news/tesla-q4-deliveries-sample",
		source:    "benzinga",
		published: "2026-02-19T17:00:00Z",
	},
	{
		file:      "microsoft_azure.html",
		title:     "Microsoft Azure Revenue Grows 35% as Enterprise AI Adoption Surges",
		url:       "https://www.reuters.com/technology/microsoft-azure-q2-sample",
		source:    "reuters_technology",
		published: "2026-02-19T22:00:00Z",
	},
}

// SampleArticles returns the built-in demonstration articles. They are
// the fallback when every configured feed fails, so the rest of the
// pipeline can still run on a machine with no network access.
func SampleArticles() []internal.Article {
	articles := make([]internal.Article, 0, len(sampleMeta))
	for _, m := range sampleMeta {
		raw, err := sampleFS.ReadFile("samples/" + m.file)
		if err != nil {
			continue
		}
		articles = append(articles, internal.Article{
			ID:        uuid.NewString(),
			Title:     m.title,
			URL:       m.url,
			Source:    m.source,
			Published: m.published,
			HTML:      string(raw),
			FetchedAt: time.Now(),
		})
	}
	return articles
}
