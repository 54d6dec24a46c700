// Package verifier scores an assembled translation against its source
// with deterministic heuristics. Verification never errors; a failing
// report is a normal result the caller surfaces, not an exception.
package verifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/valpere/newstran/internal/parser"
)

// Check names as they appear in reports.
const (
	CheckLengthRatio     = "length_ratio"
	CheckStructuralRatio = "structural_ratio"
	CheckNumericCoverage = "numeric_coverage"
	CheckUntranslatedRun = "untranslated_run"
	CheckCompleteness    = "completeness"
)

// Korean renders English in fewer, denser words, so the length band
// sits well below 1:1.
const (
	minLengthRatio     = 0.35
	maxLengthRatio     = 1.40
	minStructuralRatio = 0.50
	maxStructuralRatio = 2.00
	minNumericCoverage = 0.45
	maxSourceWordRun   = 25
	minTranslatedWords = 20
)

// Check is one named measurement with its pass verdict.
type Check struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// Report carries the full check list, an overall verdict (AND of all
// checks), and an informational 0-100 score with human-readable issues.
// The score never affects the verdict.
type Report struct {
	Pass   bool     `json:"pass"`
	Score  float64  `json:"score"`
	Checks []Check  `json:"checks"`
	Issues []string `json:"issues,omitempty"`
}

// Find returns the named check from the report.
func (r Report) Find(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Verify runs every check over the (source, translation) pair. It is a
// pure function: identical inputs always yield identical reports.
func Verify(sourceHTML, translatedHTML string) Report {
	sourceText := parser.PlainText(sourceHTML)
	translatedText := parser.PlainText(translatedHTML)

	sourceWords := len(strings.Fields(sourceText))
	translatedWords := len(strings.Fields(translatedText))

	length := lengthRatio(sourceWords, translatedWords)
	structural := structuralRatio(sourceHTML, translatedHTML)
	numeric := numericCoverage(sourceText, translatedText)
	run := untranslatedRun(translatedText)
	complete := completeness(translatedWords)

	report := Report{
		Pass:   true,
		Checks: []Check{length, structural, numeric, run, complete},
	}
	for _, c := range report.Checks {
		if !c.Pass {
			report.Pass = false
		}
	}

	score := 100.0
	if !length.Pass {
		if length.Value < minLengthRatio {
			report.Issues = append(report.Issues, fmt.Sprintf("translation too short (ratio=%.2f)", length.Value))
			score -= 30
		} else {
			report.Issues = append(report.Issues, fmt.Sprintf("translation suspiciously long (ratio=%.2f)", length.Value))
			score -= 10
		}
	}
	if !structural.Pass {
		report.Issues = append(report.Issues, fmt.Sprintf("paragraph count mismatch (ratio=%.2f)", structural.Value))
		score -= 15
	}
	if !numeric.Pass {
		report.Issues = append(report.Issues, fmt.Sprintf("significant numeric data missing (coverage=%.2f)", numeric.Value))
		score -= 15
	}
	if !run.Pass {
		report.Issues = append(report.Issues, fmt.Sprintf("untranslated source-language block of %d words", int(run.Value)))
		score -= 25
	}
	if !complete.Pass {
		report.Issues = append(report.Issues, "translation is nearly empty")
		score -= 40
	}
	if score < 0 {
		score = 0
	}
	report.Score = score

	return report
}

func lengthRatio(sourceWords, translatedWords int) Check {
	if sourceWords < 1 {
		sourceWords = 1
	}
	ratio := float64(translatedWords) / float64(sourceWords)
	return Check{
		Name:  CheckLengthRatio,
		Value: ratio,
		Pass:  ratio >= minLengthRatio && ratio <= maxLengthRatio,
	}
}

// structuralRatio compares paragraph-block counts. A source without
// paragraph markup gives the check nothing to compare, so it passes
// with a neutral value.
func structuralRatio(sourceHTML, translatedHTML string) Check {
	sourceParas := parser.CountTag(sourceHTML, "p")
	if sourceParas == 0 {
		return Check{Name: CheckStructuralRatio, Value: 1, Pass: true}
	}
	ratio := float64(parser.CountTag(translatedHTML, "p")) / float64(sourceParas)
	return Check{
		Name:  CheckStructuralRatio,
		Value: ratio,
		Pass:  ratio >= minStructuralRatio && ratio <= maxStructuralRatio,
	}
}

var reDigits = regexp.MustCompile(`[0-9]+`)

// numericCoverage checks that the source's significant digit runs
// survive into the translation. Unit reformatting turns "$39.3 billion"
// into "393억 달러", so raw digit runs are compared rather than full
// numeric surface forms; single-digit runs are too noisy to demand.
func numericCoverage(sourceText, translatedText string) Check {
	source := make(map[string]bool)
	for _, d := range reDigits.FindAllString(sourceText, -1) {
		if len(d) >= 2 {
			source[d] = true
		}
	}
	if len(source) == 0 {
		return Check{Name: CheckNumericCoverage, Value: 1, Pass: true}
	}

	translated := make(map[string]bool)
	for _, d := range reDigits.FindAllString(translatedText, -1) {
		translated[d] = true
	}
	covered := 0
	for d := range source {
		if translated[d] {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(source))
	return Check{
		Name:  CheckNumericCoverage,
		Value: coverage,
		Pass:  coverage >= minNumericCoverage,
	}
}

var reASCIIWord = regexp.MustCompile(`^[A-Za-z][A-Za-z'-]*$`)

// untranslatedRun measures the longest run of consecutive bare ASCII
// words in the translation, a signal of content passed through
// untranslated. Numbers and mixed-script tokens break the run.
func untranslatedRun(translatedText string) Check {
	longest, run := 0, 0
	for _, tok := range strings.Fields(translatedText) {
		if reASCIIWord.MatchString(tok) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return Check{
		Name:  CheckUntranslatedRun,
		Value: float64(longest),
		Pass:  longest < maxSourceWordRun,
	}
}

func completeness(translatedWords int) Check {
	return Check{
		Name:  CheckCompleteness,
		Value: float64(translatedWords),
		Pass:  translatedWords >= minTranslatedWords,
	}
}
