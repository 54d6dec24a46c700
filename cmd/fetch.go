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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/newstran/internal/detector"
	"github.com/valpere/newstran/internal/fetcher"
)

var (
	fetchFeeds       []string
	fetchMaxArticles int
	fetchNoEnrich    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect news articles from RSS feeds into the store",
	Long: `Collect articles from the configured RSS feeds and store them for
translation. Feed entries that only carry a teaser are enriched by
downloading the full publisher page.

Articles are deduplicated by URL; an article already in the store is
not stored again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()

		fcfg := cfg.FetcherConfig()
		if len(fetchFeeds) > 0 {
			selected := make(map[string]string, len(fetchFeeds))
			for _, name := range fetchFeeds {
				url, ok := fcfg.Feeds[name]
				if !ok {
					return fmt.Errorf("unknown feed: %s", name)
				}
				selected[name] = url
			}
			fcfg.Feeds = selected
		}
		if fetchMaxArticles > 0 {
			fcfg.MaxArticles = fetchMaxArticles
		}
		if fetchNoEnrich {
			fcfg.Enrich = false
		}

		f := fetcher.New(fcfg, logger)
		if cfg.Fetch.SkipTargetLanguage {
			if cfg.Pipeline.SourceLang == "en" && cfg.Pipeline.TargetLang == "ko" {
				f.SetSkipLanguage(detector.NewEnglishKorean(), cfg.Pipeline.TargetLang)
			} else {
				f.SetSkipLanguage(detector.New(), cfg.Pipeline.TargetLang)
			}
		}

		fmt.Fprintf(os.Stderr, "Fetching from %d feeds...\n", len(fcfg.Feeds))
		articles, err := f.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		saved := 0
		for _, art := range articles {
			inserted, err := db.SaveArticle(ctx, art)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save %q: %v\n", art.Title, err)
				continue
			}
			if inserted {
				saved++
			}
		}

		fmt.Printf("Fetched %d articles, %d new.\n", len(articles), saved)
		if len(articles) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tWORDS\tTITLE")
		for _, art := range articles {
			fmt.Fprintf(w, "%s\t%d\t%s\n", art.Source, art.WordCount(), truncateText(art.Title, 60))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchFeeds, "feeds", nil, "Feed names to fetch (default all configured feeds)")
	fetchCmd.Flags().IntVar(&fetchMaxArticles, "max-articles", 0, "Cap on collected articles (default from config)")
	fetchCmd.Flags().BoolVar(&fetchNoEnrich, "no-enrich", false, "Skip full-page downloads for teaser entries")
}
