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

	"github.com/valpere/newstran/internal/glossary"
	"github.com/valpere/newstran/internal/parser"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the terminology glossary",
	Long: `Add, list, and delete curated terminology entries.

Curated entries are merged into every article's extracted glossary and
win over extracted targets, so a source term is always rendered the
same way: useful for proper nouns, company names, and financial
vocabulary.`,
}

var (
	glossaryListSource string
	glossaryListTarget string
)

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		// Pass empty strings to list everything; flags narrow the filter.
		entries, err := db.ListGlossaryTerms(context.Background(), glossaryListSource, glossaryListTarget)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE LANG\tTARGET LANG\tSOURCE TERM\tTARGET TERM")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.SourceLang, e.TargetLang, e.SourceTerm, e.TargetTerm)
		}
		return w.Flush()
	},
}

var (
	glossaryAddSource string
	glossaryAddTarget string
)

var glossaryAddCmd = &cobra.Command{
	Use:   "add <source-term> <target-term>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry mapping a source-language term to a target-language term.

Example:
  newstran glossary add "Federal Reserve" "연방준비제도(Fed)"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddGlossaryTerm(context.Background(), glossaryAddSource, glossaryAddTarget, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added: [%s→%s] %q → %q\n", glossaryAddSource, glossaryAddTarget, args[0], args[1])
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long: `Delete a glossary entry by its ID (shown in "newstran glossary list").

Example:
  newstran glossary delete gl_1234567890123456789`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

var glossarySuggestSave bool

var glossarySuggestCmd = &cobra.Command{
	Use:   "suggest <article-id>",
	Short: "Suggest Korean renderings for a stored article's terms",
	Long: `Extract terminology from a stored article and suggest target-language
renderings with Google Cloud Translation for the terms that have none.

Requires a service account file (services.google_credentials in the
config or NEWSTRAN_SERVICES_GOOGLE_CREDENTIALS). Pass --save to add
the suggestions to the glossary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Services.GoogleCredentials == "" {
			return fmt.Errorf("google credentials not configured (set NEWSTRAN_SERVICES_GOOGLE_CREDENTIALS)")
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		art, err := db.GetArticle(ctx, args[0])
		if err != nil {
			return err
		}

		doc, err := parser.Parse(art.HTML)
		if err != nil {
			return fmt.Errorf("failed to parse article: %w", err)
		}

		gloss := glossary.Build(doc, cfg.Pipeline.LeadParagraphs)
		var missing []string
		for _, term := range gloss.Terms {
			if term.Target == "" {
				missing = append(missing, term.Source)
			}
		}
		if len(missing) == 0 {
			fmt.Println("Every extracted term already has a rendering.")
			return nil
		}

		suggestions, err := glossary.SuggestTargets(ctx, cfg.Services.GoogleCredentials, missing, cfg.Pipeline.TargetLang)
		if err != nil {
			return fmt.Errorf("failed to suggest renderings: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE TERM\tSUGGESTED")
		saved := 0
		for _, term := range missing {
			suggested, ok := suggestions[term]
			if !ok || suggested == "" {
				fmt.Fprintf(w, "%s\t-\n", term)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", term, suggested)
			if glossarySuggestSave {
				if err := db.AddGlossaryTerm(ctx, cfg.Pipeline.SourceLang, cfg.Pipeline.TargetLang, term, suggested); err == nil {
					saved++
				}
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if glossarySuggestSave {
			fmt.Printf("Saved %d suggestions to the glossary.\n", saved)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	// --source / --target flags on the list subcommand for optional filtering.
	glossaryListCmd.Flags().StringVarP(&glossaryListSource, "source", "s", "", "Filter by source language code (e.g. en)")
	glossaryListCmd.Flags().StringVarP(&glossaryListTarget, "target", "t", "", "Filter by target language code (e.g. ko)")

	glossaryAddCmd.Flags().StringVarP(&glossaryAddSource, "source", "s", "en", "Source language code")
	glossaryAddCmd.Flags().StringVarP(&glossaryAddTarget, "target", "t", "ko", "Target language code")

	glossarySuggestCmd.Flags().BoolVar(&glossarySuggestSave, "save", false, "Add accepted suggestions to the glossary")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
	glossaryCmd.AddCommand(glossarySuggestCmd)
}
