// Package glossary builds the per-article term table injected into
// every chunk translation request, keeping terminology consistent
// across independently translated chunks.
package glossary

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/valpere/newstran/internal/parser"
)

const (
	// DefaultLeadParagraphs bounds extraction to the article opening;
	// recurring terms almost always surface in the title and first
	// paragraphs.
	DefaultLeadParagraphs = 3

	// maxTerms caps the table so prompts stay small.
	maxTerms = 16
)

// Term pairs a source surface form with its target rendering. Target
// is empty when the domain list has no canonical form; the translator
// then chooses a transliteration and keeps it consistent. Numeric
// expressions carry themselves as target: they must appear verbatim.
type Term struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Glossary is the ordered, deduplicated term table for one article.
// Read-only after construction and identical for every chunk.
type Glossary struct {
	Terms []Term `json:"terms"`
}

func (g Glossary) Empty() bool { return len(g.Terms) == 0 }

// Merge folds externally managed terms into the glossary. A surface
// form already present has its target replaced; new surface forms are
// appended in sorted order. Merged terms are not subject to the
// extraction cap: the operator asked for them explicitly.
func (g *Glossary) Merge(terms map[string]string) {
	if len(terms) == 0 {
		return
	}
	index := make(map[string]int, len(g.Terms))
	for i, t := range g.Terms {
		index[strings.ToLower(t.Source)] = i
	}

	sources := make([]string, 0, len(terms))
	for src := range terms {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		if i, ok := index[strings.ToLower(src)]; ok {
			g.Terms[i].Target = terms[src]
			continue
		}
		g.Terms = append(g.Terms, Term{Source: src, Target: terms[src]})
	}
}

// Format renders the table for prompt injection, one line per term.
func (g Glossary) Format() string {
	if g.Empty() {
		return "(없음)"
	}
	var b strings.Builder
	for i, t := range g.Terms {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(t.Source)
		b.WriteString(" → ")
		if t.Target != "" {
			b.WriteString(t.Target)
		} else {
			b.WriteString("(한국어 표기를 정해 일관되게 사용)")
		}
	}
	return b.String()
}

// Build extracts the glossary from the title and the first
// leadParagraphs paragraph blocks. Pure: the same document always
// yields the same glossary. First-seen order is kept; surface forms
// are deduplicated case-insensitively. If leadParagraphs ≤ 0,
// DefaultLeadParagraphs is used.
func Build(doc parser.Document, leadParagraphs int) Glossary {
	if leadParagraphs <= 0 {
		leadParagraphs = DefaultLeadParagraphs
	}

	var g Glossary
	seen := make(map[string]bool)
	add := func(source, target string) {
		if len(g.Terms) >= maxTerms || source == "" {
			return
		}
		key := strings.ToLower(source)
		if seen[key] {
			return
		}
		seen[key] = true
		g.Terms = append(g.Terms, Term{Source: source, Target: target})
	}

	if doc.Title != "" {
		// Title-case headlines capitalize everything; entity runs
		// extracted from them are noise.
		extract(doc.Title, !isTitleCase(doc.Title), add)
	}
	paras := 0
	for _, b := range doc.Blocks {
		if b.Kind != parser.KindParagraph {
			continue
		}
		extract(b.Text, true, add)
		paras++
		if paras == leadParagraphs {
			break
		}
	}

	return g
}

var (
	currencyNum = regexp.MustCompile(`^[$€£¥]\d[\d,.]*$`)
	percentNum  = regexp.MustCompile(`^\d[\d,.]*%$`)
	bareNum     = regexp.MustCompile(`^\d[\d,.]*$`)
)

var unitWords = map[string]bool{
	"billion": true, "million": true, "trillion": true, "percent": true,
}

var leadingStop = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "and": true, "but": true, "as": true, "its": true,
	"it": true, "this": true, "that": true, "he": true, "she": true,
	"they": true, "we": true,
}

// extract walks text left to right, emitting terms in positional
// order: domain-list phrases first, then numeric expressions,
// acronyms, and (when entities is set) multi-word capitalized runs.
func extract(text string, entities bool, add func(source, target string)) {
	tokens := strings.Fields(text)
	for i := 0; i < len(tokens); {
		if surface, target, n := matchDomain(tokens, i); n > 0 {
			add(surface, target)
			i += n
			continue
		}
		if surface, n := matchNumeric(tokens, i); n > 0 {
			add(surface, surface)
			i += n
			continue
		}
		word := trimToken(tokens[i])
		if isAcronym(word) {
			add(word, "")
			i++
			continue
		}
		if entities && isCapitalized(word) {
			run := []string{word}
			j := i + 1
			for j < len(tokens) && !endsSentence(tokens[j-1]) {
				w := trimToken(tokens[j])
				if !isCapitalized(w) && !isAcronym(w) {
					break
				}
				run = append(run, w)
				j++
			}
			for len(run) > 0 && leadingStop[strings.ToLower(run[0])] {
				run = run[1:]
			}
			if len(run) >= 2 {
				surface := strings.Join(run, " ")
				target, _ := lookupDomain(surface)
				add(surface, target)
			}
			i = j
			continue
		}
		i++
	}
}

// matchDomain tries the longest domain-list phrase starting at i.
func matchDomain(tokens []string, i int) (surface, target string, n int) {
	for n = maxPhraseWords; n >= 1; n-- {
		if i+n > len(tokens) {
			continue
		}
		words := make([]string, n)
		for k := 0; k < n; k++ {
			words[k] = trimToken(tokens[i+k])
		}
		surface = strings.Join(words, " ")
		if target, ok := lookupDomain(surface); ok {
			return surface, target, n
		}
	}
	return "", "", 0
}

// matchNumeric recognizes currency amounts, percentages, and numbers
// carrying a magnitude word. Bare numbers are not glossary material.
func matchNumeric(tokens []string, i int) (surface string, n int) {
	w := trimToken(tokens[i])
	unit := ""
	if i+1 < len(tokens) {
		if u := strings.ToLower(trimToken(tokens[i+1])); unitWords[u] {
			unit = u
		}
	}
	switch {
	case currencyNum.MatchString(w):
		if unit != "" {
			return w + " " + unit, 2
		}
		return w, 1
	case percentNum.MatchString(w):
		return w, 1
	case bareNum.MatchString(w) && unit != "":
		return w + " " + unit, 2
	}
	return "", 0
}

func trimToken(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			!strings.ContainsRune("$€£¥%", r)
	})
}

func isCapitalized(w string) bool {
	runes := []rune(w)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func isAcronym(w string) bool {
	if len(w) < 2 || len(w) > 6 {
		return false
	}
	for _, r := range w {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func endsSentence(tok string) bool {
	return strings.HasSuffix(tok, ".") || strings.HasSuffix(tok, "!") ||
		strings.HasSuffix(tok, "?")
}

// isTitleCase reports whether most words are capitalized, as in a
// title-case headline.
func isTitleCase(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) < 4 {
		return false
	}
	letters, caps := 0, 0
	for _, tok := range tokens {
		w := trimToken(tok)
		if w == "" {
			continue
		}
		r := []rune(w)[0]
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				caps++
			}
		}
	}
	return letters > 0 && caps*10 >= letters*7
}
