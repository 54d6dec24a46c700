// Package chunker segments parsed articles into word-budgeted chunks
// while preserving block integrity, and carries the sliding-window
// context snippet (last N translated words) that keeps narrative
// continuity across chunk boundaries.
package chunker

import (
	"html"
	"strings"
	"unicode"

	"github.com/valpere/newstran/internal/parser"
)

const (
	// DefaultMaxWords is the chunk word budget. Most articles fit in a
	// single chunk; long features split into a handful.
	DefaultMaxWords = 900

	// DefaultOverlapWords is the trailing-context size carried between
	// consecutive chunks of one document.
	DefaultOverlapWords = 80
)

// Chunk is a contiguous run of source blocks small enough for one
// translation call. Truncated marks a chunk whose single block was cut
// at the word budget because no sentence boundary fit inside it.
type Chunk struct {
	Index     int
	Blocks    []parser.Block
	Words     int
	Truncated bool
}

// HTML joins the chunk's block markup in order.
func (c Chunk) HTML() string {
	parts := make([]string, len(c.Blocks))
	for i, b := range c.Blocks {
		parts[i] = b.HTML
	}
	return strings.Join(parts, "\n")
}

// Text joins the chunk's plain text in order.
func (c Chunk) Text() string {
	parts := make([]string, len(c.Blocks))
	for i, b := range c.Blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n")
}

// Segment partitions the document's blocks into ordered chunks.
// Splitting rules, in order:
//  1. Blocks are never reordered and never shared between chunks.
//  2. A chunk closes before a block that would push it past maxWords.
//  3. A heading opens a new chunk unless it is the document's first block.
//  4. A lone block larger than the budget is split at sentence
//     boundaries into single-block chunks; a sentence run exceeding the
//     budget by itself is cut at the budget and marked Truncated.
//
// No text is dropped: concatenating the chunks reproduces the source.
// An empty document yields a nil slice. If maxWords ≤ 0,
// DefaultMaxWords is used.
func Segment(doc parser.Document, maxWords int) []Chunk {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var chunks []Chunk
	var cur Chunk

	flush := func() {
		if len(cur.Blocks) == 0 {
			return
		}
		cur.Index = len(chunks)
		chunks = append(chunks, cur)
		cur = Chunk{}
	}

	for _, b := range doc.Blocks {
		if b.Words > maxWords {
			flush()
			for _, piece := range splitOversized(b, maxWords) {
				piece.Index = len(chunks)
				chunks = append(chunks, piece)
			}
			continue
		}
		if b.Heading() && len(cur.Blocks) > 0 {
			flush()
		}
		if cur.Words+b.Words > maxWords {
			flush()
		}
		cur.Blocks = append(cur.Blocks, b)
		cur.Words += b.Words
	}
	flush()

	return chunks
}

// splitOversized cuts one block into single-block chunks of at most
// maxWords each, preferring sentence boundaries. Inline markup inside
// the block does not survive the cut; pieces are rewrapped in the
// block's own tag.
func splitOversized(b parser.Block, maxWords int) []Chunk {
	var pieces []Chunk
	var words []string

	emit := func(truncated bool) {
		if len(words) == 0 {
			return
		}
		text := strings.Join(words, " ")
		pieces = append(pieces, Chunk{
			Blocks: []parser.Block{{
				Kind:  b.Kind,
				Tag:   b.Tag,
				HTML:  "<" + b.Tag + ">" + html.EscapeString(text) + "</" + b.Tag + ">",
				Text:  text,
				Words: len(words),
			}},
			Words:     len(words),
			Truncated: truncated,
		})
		words = nil
	}

	for _, sentence := range splitSentences(b.Text) {
		sw := strings.Fields(sentence)
		if len(sw) > maxWords {
			emit(false)
			for len(sw) > maxWords {
				words = sw[:maxWords]
				emit(true)
				sw = sw[maxWords:]
			}
			words = append(words, sw...)
			continue
		}
		if len(words)+len(sw) > maxWords {
			emit(false)
		}
		words = append(words, sw...)
	}
	emit(false)

	return pieces
}

// splitSentences breaks text where terminal punctuation is followed by
// whitespace and an upper-case letter. Decimal points and lower-case
// continuations do not split.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i+1 < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		k := i + 1
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == i+1 || k >= len(runes) {
			continue
		}
		if unicode.IsUpper(runes[k]) {
			seg := strings.TrimSpace(string(runes[start : i+1]))
			if seg != "" {
				out = append(out, seg)
			}
			start = k
			i = k - 1
		}
	}

	if start < len(runes) {
		if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
			out = append(out, tail)
		}
	}
	return out
}
