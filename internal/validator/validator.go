// Package validator checks that an assembled translation is actually
// written in the target language. It is an advisory signal: heuristic
// verification owns the pass/fail verdict, this catches the grosser
// failure of a model answering in the wrong language entirely.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/newstran/internal/detector"
	"github.com/valpere/newstran/internal/parser"
)

// minValidationLength is the minimum rune count required to attempt
// language detection. Shorter texts produce unreliable results and are
// accepted without validation.
const minValidationLength = 20

// Validator wraps a language detector. The detector is expensive to
// build; construct one Validator and share it across documents.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator over the given detector. The pipeline passes
// detector.NewEnglishKorean for the usual source/target pair.
func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// IsValid returns true when translatedHTML appears to be written in
// targetLang. Markup is stripped before detection; tags skew the
// n-gram statistics.
//
// Short texts and texts whose language cannot be determined pass
// without error. When the detected language differs from targetLang
// the returned error names both codes.
func (v *Validator) IsValid(translatedHTML, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(parser.PlainText(translatedHTML))
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language, cannot validate. Pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
