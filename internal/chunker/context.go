package chunker

import "github.com/valpere/newstran/internal/parser"

// ContextWindow carries the tail of the most recent chunk translation
// into the next chunk's request. One window belongs to one document
// and assumes chunks complete strictly in order; it must not be shared
// across documents.
type ContextWindow struct {
	size int
	tail string
}

// NewContextWindow returns a window keeping the last size words.
// If size ≤ 0, DefaultOverlapWords is used.
func NewContextWindow(size int) *ContextWindow {
	if size <= 0 {
		size = DefaultOverlapWords
	}
	return &ContextWindow{size: size}
}

// Current returns the trailing context for the next chunk. Empty before
// the first chunk of the document completes.
func (w *ContextWindow) Current() string {
	return w.tail
}

// Advance records a completed chunk translation, replacing the window
// with its last words. Markup is stripped so the context reads as
// prose.
func (w *ContextWindow) Advance(translatedHTML string) {
	w.tail = parser.TailWords(translatedHTML, w.size)
}
