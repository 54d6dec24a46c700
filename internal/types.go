package internal

import "time"

// Article is one source document collected from a news feed.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Published string    `json:"published"`
	HTML      string    `json:"html"`
	FetchedAt time.Time `json:"fetched_at"`
}

// WordCount reports the number of whitespace-separated words in the
// article body with markup ignored. Used for quick sizing before the
// article is parsed properly.
func (a Article) WordCount() int {
	inTag := false
	inWord := false
	n := 0
	for _, r := range a.HTML {
		switch {
		case r == '<':
			inTag = true
			inWord = false
		case r == '>':
			inTag = false
		case inTag:
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			inWord = false
		default:
			if !inWord {
				n++
				inWord = true
			}
		}
	}
	return n
}
