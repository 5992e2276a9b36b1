package core

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one role-tagged message in a session's history. Immutable once appended.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

// PromptMessage is a single role-tagged entry of an assembled LLM prompt.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationRequest is the input to one orchestration cycle. At least one of
// Audio or Text must be present.
type ConversationRequest struct {
	SessionKey string
	Audio      []byte
	Text       string
	Model      string // optional per-request model override
	VoiceID    string // optional per-request voice override
}

// Empty reports whether the request carries neither audio nor usable text.
func (r ConversationRequest) Empty() bool {
	return len(r.Audio) == 0 && strings.TrimSpace(r.Text) == ""
}

type TranscriptStatus string

const (
	TranscriptCompleted   TranscriptStatus = "completed"
	TranscriptUnavailable TranscriptStatus = "unavailable"
	TranscriptError       TranscriptStatus = "error"
)

// TranscriptResult is the outcome of one transcription attempt. Upstream
// failures are carried in Status, never as a propagated error.
type TranscriptResult struct {
	Text   string           `json:"text"`
	Status TranscriptStatus `json:"status"`
}

// OK reports whether the transcription produced usable text.
func (r TranscriptResult) OK() bool {
	return r.Status == TranscriptCompleted && strings.TrimSpace(r.Text) != ""
}

// ReplyResult is the outcome of one LLM completion. Fallback marks a canned
// substitute used because the upstream call failed or returned nothing.
type ReplyResult struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"`
}

// AudioSegment is one bounded-length slice of an assistant reply with its
// synthesized audio reference. TextFallback marks a segment whose synthesis
// failed; the frontend should render the text instead.
type AudioSegment struct {
	Text         string `json:"text"`
	AudioURL     string `json:"audio_url,omitempty"`
	TextFallback bool   `json:"text_fallback,omitempty"`
}

// Voice describes one synthesis voice offered by the TTS provider.
type Voice struct {
	VoiceID     string `json:"voice_id"`
	DisplayName string `json:"display_name,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// TurnResult is what one orchestration cycle returns to the caller.
type TurnResult struct {
	TranscriptText string         `json:"transcript_text,omitempty"`
	ReplyText      string         `json:"llm_text"`
	Model          string         `json:"model,omitempty"`
	Segments       []AudioSegment `json:"segments"`
	Fallback       bool           `json:"fallback,omitempty"`
}

// AudioURLs returns the ordered audio references of the successfully
// synthesized segments.
func (r TurnResult) AudioURLs() []string {
	urls := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if !seg.TextFallback && seg.AudioURL != "" {
			urls = append(urls, seg.AudioURL)
		}
	}
	return urls
}
