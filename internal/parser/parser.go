// Package parser cleans raw article HTML and extracts the ordered
// sequence of translatable blocks.
package parser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Tags whose entire subtree is chrome or machinery, never article text.
var removeTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"form": true, "button": true, "svg": true, "figure": true,
	"figcaption": true,
}

// Substrings of class/id attributes that mark boilerplate containers.
var boilerplateSignals = []string{
	"subscribe", "newsletter", "advertisement", "cookie",
	"sign up", "signup", "related", "share", "promo",
}

// Elements that become translation blocks. Matching elements are
// captured whole; their descendants are not visited again.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"li": true, "blockquote": true,
}

// Blocks with less text than this are dropped as noise.
const minBlockChars = 10

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindListItem
	KindQuote
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindQuote:
		return "quote"
	default:
		return "paragraph"
	}
}

// Block is one translatable element in document order.
type Block struct {
	Kind  BlockKind
	Tag   string
	HTML  string
	Text  string
	Words int
}

func (b Block) Heading() bool { return b.Kind == KindHeading }

// Document is a cleaned article ready for segmentation.
type Document struct {
	Title  string
	Blocks []Block
}

// Words reports the total word count across all blocks.
func (d Document) Words() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.Words
	}
	return n
}

// HTML reassembles the block markup in document order.
func (d Document) HTML() string {
	parts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		parts[i] = b.HTML
	}
	return strings.Join(parts, "\n")
}

// Parse cleans raw HTML and extracts the block sequence. The input may
// be a full page or a fragment; surrounding chrome is stripped.
func Parse(raw string) (Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}

	strip(root)

	doc := Document{Title: findTitle(root)}
	collect(root, &doc.Blocks)
	return doc, nil
}

// strip removes non-content subtrees in place: chrome tags, comments,
// and containers whose class/id signals boilerplate.
func strip(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && removeTags[c.Data]:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isBoilerplate(c):
			n.RemoveChild(c)
		default:
			strip(c)
		}
	}
}

func isBoilerplate(n *html.Node) bool {
	var attrText string
	for _, a := range n.Attr {
		if a.Key == "class" || a.Key == "id" {
			attrText += " " + strings.ToLower(a.Val)
		}
	}
	if attrText == "" {
		return false
	}
	for _, sig := range boilerplateSignals {
		if strings.Contains(attrText, sig) {
			return true
		}
	}
	return false
}

// collect walks the cleaned tree and captures block elements. Matches
// are taken whole so a blockquote's inner paragraphs are not captured
// twice.
func collect(n *html.Node, out *[]Block) {
	if n.Type == html.ElementNode && blockTags[n.Data] {
		text := collapse(textContent(n))
		if len(text) < minBlockChars {
			return
		}
		var buf strings.Builder
		if err := html.Render(&buf, n); err != nil {
			return
		}
		*out = append(*out, Block{
			Kind:  kindOf(n.Data),
			Tag:   n.Data,
			HTML:  buf.String(),
			Text:  text,
			Words: len(strings.Fields(text)),
		})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, out)
	}
}

func kindOf(tag string) BlockKind {
	switch {
	case headingLevel(tag) > 0:
		return KindHeading
	case tag == "li":
		return KindListItem
	case tag == "blockquote":
		return KindQuote
	default:
		return KindParagraph
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// findTitle prefers the first h1, then the head title element.
func findTitle(root *html.Node) string {
	if h1 := findElement(root, "h1"); h1 != nil {
		return collapse(textContent(h1))
	}
	if t := findElement(root, "title"); t != nil {
		return collapse(textContent(t))
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textContent(c))
	}
	return buf.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
