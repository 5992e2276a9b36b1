package agent

import (
	"strings"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

// BuildPrompt assembles the LLM prompt: persona preamble first, then at most
// window turns of history (most recent kept), then the current user utterance.
// Blank history turns are skipped. window <= 0 drops the history entirely.
func BuildPrompt(persona Persona, history []core.Turn, window int, userText string) []core.PromptMessage {
	if window < 0 {
		window = 0
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]core.PromptMessage, 0, len(history)+2)
	messages = append(messages, core.PromptMessage{
		Role:    core.RoleSystem,
		Content: persona.SystemPrompt,
	})

	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, core.PromptMessage{
			Role:    turn.Role,
			Content: content,
		})
	}

	messages = append(messages, core.PromptMessage{
		Role:    core.RoleUser,
		Content: userText,
	})
	return messages
}
