package agent

import "strings"

// Persona configures the assistant's identity: the system prompt fed to the
// LLM, the voice used for synthesis, and a canned greeting with its trigger
// phrases.
type Persona struct {
	Name             string   `json:"name"`
	SystemPrompt     string   `json:"system_prompt"`
	Greeting         string   `json:"greeting"`
	VoiceID          string   `json:"voice_id"`
	GreetingTriggers []string `json:"greeting_triggers,omitempty"`
}

// DefaultPersona returns a plain concise voice-assistant persona.
func DefaultPersona() Persona {
	return Persona{
		Name:         "Assistant",
		SystemPrompt: "You are a helpful, concise voice assistant. Keep responses clear and short.",
		Greeting:     "Hello! I'm your voice assistant. How can I help?",
		VoiceID:      "en-US-natalie",
		GreetingTriggers: []string{
			"hello", "hi", "hey", "greetings", "good morning", "good afternoon",
			"good evening", "howdy", "what's up", "yo", "wake up", "start",
		},
	}
}

// IsGreeting reports whether the text is a bare greeting that can be answered
// with the persona's canned greeting instead of an LLM round trip.
func (p Persona) IsGreeting(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}

	for _, trigger := range p.GreetingTriggers {
		if text == trigger || strings.HasPrefix(text, trigger+" ") || strings.HasPrefix(text, trigger+",") {
			return true
		}
	}

	// Very short messages containing a greeting word count too.
	if len(strings.Fields(text)) <= 2 {
		for _, word := range []string{"hi", "hello", "hey"} {
			if strings.Contains(text, word) {
				return true
			}
		}
	}
	return false
}
