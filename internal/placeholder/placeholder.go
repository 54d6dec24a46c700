// Package placeholder protects HTML markup during seam smoothing by
// replacing tags with numbered markers ([PH0], [PH1], …) the model is
// instructed to preserve. After the rewrite, Restore substitutes the
// markers back. A marker lost in the rewrite means the model altered
// structure, which Validate reports so the caller can discard the
// rewrite.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// HTML/XML tags: opening, closing, and self-closing
	reHTMLTag = regexp.MustCompile(`<[^>]+>`)

	// placeholder reference in rewritten text
	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Protect replaces HTML tags with numbered placeholders [PH0], [PH1], …
// in the order they appear in text. It returns the modified text and
// the slice of captured originals so Restore can put them back.
func Protect(text string) (string, []string) {
	var markers []string
	counter := 0

	text = reHTMLTag.ReplaceAllStringFunc(text, func(match string) string {
		id := fmt.Sprintf("[PH%d]", counter)
		markers = append(markers, match)
		counter++
		return id
	})

	return text, markers
}

// Restore substitutes [PHn] markers in text back with the originals
// captured by Protect. Unrecognised indices leave the placeholder
// as-is.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// InstructionHint returns the prompt sentence telling the model to
// leave placeholders intact.
func InstructionHint() string {
	return "[PH숫자] 형태의 마커는 번역·이동·삭제하지 말고 원래 위치에 그대로 유지하세요."
}

// Validate checks whether all markers created by Protect are still
// present in the rewritten text. It returns the list of missing
// indices; a non-empty result means the rewrite broke markup and must
// be discarded.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Markers lists the marker indices referenced in text, in order of
// appearance. Out-of-range indices are reported too, so callers can
// reject rewrites that invented markers.
func Markers(text string) []int {
	var out []int
	for _, sub := range rePlaceholder.FindAllStringSubmatch(text, -1) {
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		out = append(out, idx)
	}
	return out
}
