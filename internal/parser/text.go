package parser

import (
	"bytes"
	"strings"
)

// PlainText strips markup from an HTML fragment and collapses runs of
// whitespace to single spaces.
func PlainText(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
			result.WriteRune(' ')
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return collapse(result.String())
}

// Fields splits an HTML fragment into plain-text words.
func Fields(htmlContent string) []string {
	return strings.Fields(PlainText(htmlContent))
}

// WordCount reports the number of plain-text words in an HTML fragment.
func WordCount(htmlContent string) int {
	return len(Fields(htmlContent))
}

// CountTag counts opening occurrences of the given tag, attributes and
// case notwithstanding. Self-closing forms count too.
func CountTag(htmlContent, tag string) int {
	lower := strings.ToLower(htmlContent)
	tag = strings.ToLower(tag)
	count := 0
	for i := 0; i+len(tag)+1 < len(lower); {
		j := strings.Index(lower[i:], "<"+tag)
		if j < 0 {
			break
		}
		pos := i + j + len(tag) + 1
		if pos < len(lower) {
			switch lower[pos] {
			case '>', ' ', '\t', '\n', '\r', '/':
				count++
			}
		}
		i = pos
	}
	return count
}

// TailWords returns the last n plain-text words of an HTML fragment,
// joined with single spaces. Returns the whole text when it is shorter
// than n words.
func TailWords(htmlContent string, n int) string {
	words := Fields(htmlContent)
	if n <= 0 || len(words) == 0 {
		return ""
	}
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
