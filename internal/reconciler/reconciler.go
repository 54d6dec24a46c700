// Package reconciler reassembles per-chunk translations into a single
// document. Chunk interiors are joined verbatim; only a bounded window
// of words around each boundary is offered to a Smoother, and any
// rewrite that fails or breaks the guard falls back to the raw join for
// that seam.
package reconciler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/valpere/newstran/internal/parser"
	"github.com/valpere/newstran/internal/placeholder"
)

// DefaultSeamWindowWords bounds how many words on each side of a chunk
// boundary the smoother may rewrite.
const DefaultSeamWindowWords = 40

// Smoother rewrites the text around one chunk boundary for coherence.
// The input carries [PHn] markers in place of HTML tags; the rewrite
// must keep every marker where it stands.
type Smoother interface {
	Smooth(ctx context.Context, seam string) (string, error)
}

type Reconciler struct {
	smoother    Smoother
	windowWords int
	logger      *zap.Logger
}

func New(smoother Smoother, windowWords int, logger *zap.Logger) *Reconciler {
	if windowWords <= 0 {
		windowWords = DefaultSeamWindowWords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		smoother:    smoother,
		windowWords: windowWords,
		logger:      logger,
	}
}

// Assemble joins chunk translations in order without smoothing.
func Assemble(translations []string) string {
	return strings.Join(translations, "\n")
}

// Reconcile joins the ordered chunk translations, smoothing each seam.
// With zero or one chunk, or no smoother, it degenerates to Assemble.
// The only error it returns is context cancellation; seam failures are
// logged and fall back to the raw join.
func (r *Reconciler) Reconcile(ctx context.Context, translations []string) (string, error) {
	if len(translations) <= 1 || r.smoother == nil {
		return Assemble(translations), nil
	}

	var out strings.Builder
	left := translations[0]
	for i := 1; i < len(translations); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		right := translations[i]
		leftWords := parser.WordCount(left)
		tailN := r.windowWords
		if tailN > leftWords {
			tailN = leftWords
		}
		leftHead, leftTail := splitAtWord(left, leftWords-tailN)

		headN := r.windowWords
		if rw := parser.WordCount(right); headN > rw {
			headN = rw
		}
		rightHead, rightRest := splitAtWord(right, headN)

		seam := leftTail + "\n" + rightHead
		smoothed, err := r.smoothSeam(ctx, seam, i-1)
		if err != nil {
			return "", err
		}

		out.WriteString(leftHead)
		out.WriteString(smoothed)
		left = rightRest
	}
	out.WriteString(left)
	return out.String(), nil
}

// smoothSeam runs one seam through the smoother behind placeholder
// protection. It returns the raw seam on any failure; the returned
// error is non-nil only when ctx is done.
func (r *Reconciler) smoothSeam(ctx context.Context, seam string, index int) (string, error) {
	protected, markers := placeholder.Protect(seam)

	smoothed, err := r.smoother.Smooth(ctx, protected)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("seam smoothing failed, keeping raw join",
			zap.Int("seam", index), zap.Error(err))
		return seam, nil
	}

	if err := checkSeam(protected, smoothed, markers); err != nil {
		r.logger.Warn("seam rewrite rejected, keeping raw join",
			zap.Int("seam", index), zap.Error(err))
		return seam, nil
	}

	return placeholder.Restore(smoothed, markers), nil
}

// checkSeam rejects rewrites that drop, duplicate, or invent tag
// markers, or that change any digit sequence.
func checkSeam(original, smoothed string, markers []string) error {
	seen := make(map[int]int)
	for _, idx := range placeholder.Markers(smoothed) {
		seen[idx]++
	}
	for i := range markers {
		switch seen[i] {
		case 1:
		case 0:
			return fmt.Errorf("rewrite dropped marker [PH%d]", i)
		default:
			return fmt.Errorf("rewrite duplicated marker [PH%d]", i)
		}
	}
	if len(seen) > len(markers) {
		return fmt.Errorf("rewrite invented markers beyond the original %d", len(markers))
	}
	if !equalRuns(digitRuns(original), digitRuns(smoothed)) {
		return fmt.Errorf("rewrite changed numeric content")
	}
	return nil
}

var reDigitRun = regexp.MustCompile(`[0-9]+`)

func digitRuns(s string) []string {
	runs := reDigitRun.FindAllString(s, -1)
	sort.Strings(runs)
	return runs
}

func equalRuns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitAtWord splits s directly after its nth plain-text word, so that
// the two halves always rejoin to exactly s. Markup between words stays
// with the left half. Words are counted the way parser.WordCount does,
// with tags acting as separators.
func splitAtWord(s string, n int) (string, string) {
	if n <= 0 {
		return "", s
	}
	inTag := false
	inWord := false
	words := 0
	for i, r := range s {
		if inTag {
			if r == '>' {
				inTag = false
			}
			continue
		}
		switch {
		case r == '<':
			inTag = true
			inWord = false
		case unicode.IsSpace(r):
			if words >= n {
				return s[:i], s[i:]
			}
			inWord = false
		default:
			if !inWord {
				if words >= n {
					return s[:i], s[i:]
				}
				inWord = true
				words++
			}
		}
	}
	return s, ""
}
