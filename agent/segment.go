package agent

import (
	"strings"
	"unicode"
)

// SplitSegments splits reply text into segments no longer than limit runes,
// breaking at sentence boundaries where possible. Sentences that together fit
// under the limit are packed into one segment. A single sentence longer than
// the limit is split again at the last word boundary inside the window, and
// only split mid-run when it contains no whitespace at all. Empty text yields
// no segments.
func SplitSegments(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var segments []string
	current := ""
	for _, sentence := range splitSentences(text) {
		switch {
		case current == "":
			current = sentence
		case runeLen(current)+1+runeLen(sentence) <= limit:
			current += " " + sentence
		default:
			segments = append(segments, current)
			current = sentence
		}
	}
	if current != "" {
		segments = append(segments, current)
	}

	// Second pass: break up any sentence that alone exceeds the limit.
	final := make([]string, 0, len(segments))
	for _, seg := range segments {
		if runeLen(seg) <= limit {
			final = append(final, seg)
			continue
		}
		final = append(final, splitByWords(seg, limit)...)
	}
	return final
}

// splitSentences cuts text after runs of sentence terminators (. ! ?) followed
// by whitespace, keeping the terminators and dropping the whitespace.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		if isTerminator(runes[i]) {
			// Consume the full terminator run ("?!", "...").
			for i+1 < len(runes) && isTerminator(runes[i+1]) {
				i++
			}
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				sentences = append(sentences, string(runes[start:i+1]))
				i++
				for i < len(runes) && unicode.IsSpace(runes[i]) {
					i++
				}
				start = i
				continue
			}
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, strings.TrimSpace(string(runes[start:])))
	}
	return sentences
}

// splitByWords breaks an oversized sentence at whitespace, packing words up to
// the limit. A single word longer than the limit is cut at the limit.
func splitByWords(text string, limit int) []string {
	words := strings.Fields(text)
	var out []string
	current := ""
	for _, word := range words {
		for runeLen(word) > limit {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			runes := []rune(word)
			out = append(out, string(runes[:limit]))
			word = string(runes[limit:])
		}
		switch {
		case current == "":
			current = word
		case runeLen(current)+1+runeLen(word) <= limit:
			current += " " + word
		default:
			out = append(out, current)
			current = word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func runeLen(s string) int {
	return len([]rune(s))
}
