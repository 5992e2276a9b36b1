package agent

import (
	"regexp"
	"strings"
)

// normalizeForTTS strips formatting that sounds wrong when spoken: markdown
// markers, emojis, and runs of whitespace.
func normalizeForTTS(text string) string {
	text = markdownReplacer.Replace(text)
	text = emojiRegex.ReplaceAllString(text, "")
	text = multiSpaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var markdownReplacer = strings.NewReplacer(
	"**", "", // bold
	"__", "", // underline
	"~~", "", // strikethrough
	"*", "", // italic
	"`", "", // inline code
	"#", "", // headings
)

var (
	// Anything outside letters, digits, punctuation and separators is treated
	// as emoji/symbol noise.
	emojiRegex      = regexp.MustCompile(`[^\p{L}\p{N}\p{P}\p{Z}\s]`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)
