// Package segmenter splits a passage into ordered translation units that can
// be translated independently and reassembled without losing line or sentence
// boundaries. Segmentation is a pure function of its input.
package segmenter

import (
	"strings"
	"unicode"
)

const (
	// MaxLineRunes is the length above which a single line is further split
	// into sentences. Shorter lines are translated whole so a sentence is
	// never cut mid-way.
	MaxLineRunes = 100
)

// Unit is one independently translatable span of the source passage together
// with its position in the original sequence.
type Unit struct {
	Index int
	Text  string
}

// Segment splits text into ordered units:
//  1. Lines are split on line breaks; blank lines are dropped.
//  2. Any line longer than MaxLineRunes is split at sentence-ending
//     punctuation (. ! ?) followed by whitespace.
//
// Order is preserved and empty fragments are discarded. Segment(Segment
// input) is deterministic and restartable.
func Segment(text string) []Unit {
	var units []Unit
	idx := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		for _, sentence := range splitLine(line) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			units = append(units, Unit{Index: idx, Text: sentence})
			idx++
		}
	}

	return units
}

// splitLine returns the line unchanged when it fits within MaxLineRunes,
// otherwise splits it into sentences.
func splitLine(line string) []string {
	if len([]rune(line)) <= MaxLineRunes {
		return []string{line}
	}
	return splitSentences(line)
}

// splitSentences splits text after sentence-ending punctuation followed by
// whitespace. The punctuation stays attached to the sentence it ends.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			// skip the whitespace run following the terminator
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

// Multiline reports whether text contains a line break, which selects the
// paragraph-break join policy on reassembly.
func Multiline(text string) bool {
	return strings.Contains(text, "\n")
}

// Join reassembles per-unit translations in unit order. Passages that were
// multi-line are joined with a blank-line paragraph break to keep the visual
// shape of the original; single-line passages are joined with a single space.
func Join(parts []string, multiline bool) string {
	sep := " "
	if multiline {
		sep = "\n\n"
	}
	return strings.Join(parts, sep)
}
