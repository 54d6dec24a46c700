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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/newstran/internal/verifier"
)

var verifySave bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-run verification over completed translations",
	Long: `Re-run the structural and numeric checks over every completed
translation in the store and print the results.

The checks compare each translation against its source article: word
count ratio, tag structure, numeric token coverage, untranslated runs,
and completeness. Pass --save to overwrite the stored reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		completed, err := db.Completed(ctx)
		if err != nil {
			return fmt.Errorf("failed to load translations: %w", err)
		}
		if len(completed) == 0 {
			fmt.Println("No completed translations in the store.")
			return nil
		}

		passed := 0
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tPASS\tISSUES\tTITLE")
		for _, tr := range completed {
			report := verifier.Verify(tr.SourceHTML, tr.TranslatedHTML)
			if report.Pass {
				passed++
			}

			issues := "-"
			if len(report.Issues) > 0 {
				issues = truncateText(strings.Join(report.Issues, "; "), 60)
			}
			fmt.Fprintf(w, "%.0f\t%v\t%s\t%s\n",
				report.Score, report.Pass, issues, truncateText(tr.Title, 50))

			if verifySave {
				_ = db.SaveVerification(ctx, tr.ArticleID, report.Pass, report.Score, report.Issues)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d/%d translations pass verification.\n", passed, len(completed))
		if verifySave {
			fmt.Println("Stored reports updated.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifySave, "save", false, "Overwrite stored verification reports")
}
