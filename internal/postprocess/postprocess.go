// Package postprocess removes common LLM artifacts from translation output.
//
// It is applied to the raw text returned by the remote model before the
// result is used downstream: combined responses are broken into cleaned
// lines, single responses are stripped of wrapping and echoes.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from a single translation and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// Lines splits a combined response into cleaned, non-empty result lines with
// leading enumeration markers ("1.", "2)", "-") removed. The returned order
// matches the response order, which the prompt fixes to the target-language
// order of the request.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = StripMarker(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		out = append(out, removeQuoteWrapping(line))
	}
	return out
}

// markerRe matches a leading enumeration marker: digits followed by "." or
// ")", or a single dash bullet, plus trailing whitespace.
var markerRe = regexp.MustCompile(`^(?:\d+[.)]|-)\s*`)

// StripMarker removes a leading enumeration marker from line, if present.
func StripMarker(line string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(line, ""))
}

// --- thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to. Each pattern is anchored to the start of the
// string and requires a colon to reduce false positives.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)(?: in \pL+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:french|english|polish)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them (a common LLM artifact).  Supported pairs:
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
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
