// Package postprocess removes common LLM artifacts from translation
// output.
//
// It is applied to the raw text returned by any LLM-backed call (chunk
// translation, seam smoothing) before the result is used downstream.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in four phases and returns the
// trimmed result:
//  1. Markdown code-fence unwrapping
//  2. Thinking / reasoning block removal
//  3. Instruction echo removal (prompt leakage)
//  4. Quote wrapping removal
func Clean(text string) string {
	text = removeCodeFence(text)
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: code fences ---

// codeFenceRe matches output wrapped whole in a markdown code fence,
// with or without a language tag. The prompt forbids fences; models
// add them anyway.
var codeFenceRe = regexp.MustCompile("(?s)^```(?:html|json|xml)?\\s*(.*?)\\s*```$")

func removeCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return text
}

// --- Phase 2: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 3: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend
// even when instructed not to. English and Korean variants are anchored
// to the start of the string and require a colon to reduce false
// positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [Korean] translation:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:korean |translated )?(?:translation|text|html)\s*:`),
	// "[The] [Korean] [translation|translated text]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:korean )?(?:translation|translated text|translated html)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] translation:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:korean |translated )?(?:translation|text|html)\s*:`),
	// "번역 결과:" / "다음은 ... 번역입니다:" / "한국어 번역:"
	regexp.MustCompile(`^번역\s*결과\s*[:：]`),
	regexp.MustCompile(`^한국어\s*번역\s*[:：]`),
	regexp.MustCompile(`^다음은.{0,20}번역입니다\s*[:：]?`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 4: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the
// entire text is wrapped in them (a common LLM artifact). Supported
// pairs:
//
//	"…"  '…'  «…»  "…"  '…'
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') || // " "
		(first == '‘' && last == '’') { //  ' '
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
