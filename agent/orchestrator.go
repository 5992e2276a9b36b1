package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

// ErrEmptyRequest rejects a turn that carries neither audio nor text. It is
// the only error ProcessTurn returns; every upstream failure past input
// validation degrades into a fallback result instead.
var ErrEmptyRequest = errors.New("request carries neither audio nor text")

// STTService transcribes raw audio bytes. Failures are reported through the
// result status, never as an error.
type STTService interface {
	Transcribe(ctx context.Context, audio []byte) core.TranscriptResult
}

// LLMService generates an assistant reply from prompt messages.
type LLMService interface {
	Complete(ctx context.Context, messages []core.PromptMessage, model string) (string, error)
}

// TTSService converts one pre-split text segment into a playable audio URL.
type TTSService interface {
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}

// HistoryStore keeps per-session ordered turn history. LockSession serializes
// whole turns: it blocks until the session's turn lock is free and returns the
// release func. The lock belongs to the store, not the orchestrator, so
// orchestrators sharing a store serialize the same sessions.
type HistoryStore interface {
	Append(sessionKey string, turn core.Turn)
	Read(sessionKey string) []core.Turn
	Clear(sessionKey string)
	LockSession(sessionKey string) (release func())
}

// Config holds the orchestrator tunables.
type Config struct {
	// HistoryWindow caps how many recent turns feed the LLM prompt.
	HistoryWindow int `json:"history_window"`
	// SegmentLimit is the maximum synthesis segment length in runes.
	SegmentLimit int `json:"segment_limit"`
	// FallbackText replaces the reply when the LLM is unreachable.
	FallbackText string `json:"fallback_text"`
	// NoInputText replaces the reply when audio could not be transcribed and
	// no text was supplied alongside it.
	NoInputText string `json:"no_input_text"`
	// DefaultModel is used when the request carries no model override.
	DefaultModel string `json:"default_model"`

	STTTimeout time.Duration `json:"stt_timeout"`
	LLMTimeout time.Duration `json:"llm_timeout"`
	TTSTimeout time.Duration `json:"tts_timeout"`

	// DisableGreetingShortcut turns off the canned persona greeting for bare
	// greeting inputs.
	DisableGreetingShortcut bool `json:"disable_greeting_shortcut"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: 50,
		SegmentLimit:  3000,
		FallbackText:  "I'm having trouble connecting right now. Please try again.",
		NoInputText:   "I couldn't hear you. Could you try that again?",
		DefaultModel:  "gemini-1.5-flash-8b",
		STTTimeout:    60 * time.Second,
		LLMTimeout:    30 * time.Second,
		TTSTimeout:    30 * time.Second,
	}
}

// Orchestrator runs one conversation turn end to end: transcription, prompt
// assembly, completion, reply segmentation, synthesis, history bookkeeping.
// It is stateless between invocations except through the history store.
//
// Turns for the same session are serialized through the store's per-session
// turn lock so the user/assistant pairing in history stays intact; turns for
// different sessions run concurrently. The lock lives in the store, so two
// orchestrators sharing a store still serialize the same sessions.
type Orchestrator struct {
	config  Config
	persona Persona
	store   HistoryStore
	stt     STTService
	llm     LLMService
	tts     TTSService
	logger  *core.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators. Use
// DefaultConfig() and override only what you need.
func NewOrchestrator(stt STTService, llm LLMService, tts TTSService, store HistoryStore, persona Persona, config Config, logger *core.Logger) *Orchestrator {
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = 50
	}
	if config.SegmentLimit <= 0 {
		config.SegmentLimit = 3000
	}
	if config.FallbackText == "" {
		config.FallbackText = DefaultConfig().FallbackText
	}
	if config.NoInputText == "" {
		config.NoInputText = DefaultConfig().NoInputText
	}
	if config.STTTimeout <= 0 {
		config.STTTimeout = 60 * time.Second
	}
	if config.LLMTimeout <= 0 {
		config.LLMTimeout = 30 * time.Second
	}
	if config.TTSTimeout <= 0 {
		config.TTSTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	return &Orchestrator{
		config:  config,
		persona: persona,
		store:   store,
		stt:     stt,
		llm:     llm,
		tts:     tts,
		logger:  logger,
	}
}

// Persona returns the active persona.
func (o *Orchestrator) Persona() Persona {
	return o.persona
}

// ProcessTurn runs one orchestration cycle for a session. The returned error
// is non-nil only for input validation; any upstream failure completes the
// turn with fallback content and records it in history.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req core.ConversationRequest) (core.TurnResult, error) {
	if req.Empty() {
		return core.TurnResult{}, ErrEmptyRequest
	}

	release := o.store.LockSession(req.SessionKey)
	defer release()

	logger := o.logger.With(map[string]interface{}{"session": req.SessionKey})

	transcriptText, userText, heard := o.resolveText(ctx, req, logger)
	if !heard {
		// Nothing usable to say to the LLM. Record the attempt with a
		// placeholder user turn so the one-to-one pairing holds, apologize,
		// and stop.
		o.appendTurn(req.SessionKey, core.RoleUser, transcriptText)
		o.appendTurn(req.SessionKey, core.RoleAssistant, o.config.NoInputText)
		return core.TurnResult{
			ReplyText: o.config.NoInputText,
			Fallback:  true,
			Segments:  []core.AudioSegment{},
		}, nil
	}

	history := o.store.Read(req.SessionKey)
	prompt := BuildPrompt(o.persona, history, o.config.HistoryWindow, userText)

	// The user turn lands before the LLM call so a concurrent history read
	// during the call already reflects the utterance.
	o.appendTurn(req.SessionKey, core.RoleUser, userText)

	reply := o.generateReply(ctx, prompt, userText, req.Model, logger)
	segments := o.synthesizeReply(ctx, reply, o.voiceFor(req), logger)

	o.appendTurn(req.SessionKey, core.RoleAssistant, reply.Text)

	return core.TurnResult{
		TranscriptText: transcriptText,
		ReplyText:      reply.Text,
		Model:          reply.Model,
		Segments:       segments,
		Fallback:       reply.Fallback,
	}, nil
}

// OneShot runs a single stateless cycle: no history is read or written. Used
// by the surface for history-free queries.
func (o *Orchestrator) OneShot(ctx context.Context, req core.ConversationRequest) (core.TurnResult, error) {
	if req.Empty() {
		return core.TurnResult{}, ErrEmptyRequest
	}

	logger := o.logger.With(map[string]interface{}{"session": "oneshot"})

	transcriptText, userText, heard := o.resolveText(ctx, req, logger)
	if !heard {
		return core.TurnResult{
			ReplyText: o.config.NoInputText,
			Fallback:  true,
			Segments:  []core.AudioSegment{},
		}, nil
	}

	prompt := BuildPrompt(o.persona, nil, 0, userText)
	reply := o.generateReply(ctx, prompt, userText, req.Model, logger)
	segments := o.synthesizeReply(ctx, reply, o.voiceFor(req), logger)

	return core.TurnResult{
		TranscriptText: transcriptText,
		ReplyText:      reply.Text,
		Model:          reply.Model,
		Segments:       segments,
		Fallback:       reply.Fallback,
	}, nil
}

// resolveText turns the request into the user's utterance. heard is false when
// neither transcription nor supplied text produced anything usable.
func (o *Orchestrator) resolveText(ctx context.Context, req core.ConversationRequest, logger *core.Logger) (transcriptText, userText string, heard bool) {
	userText = strings.TrimSpace(req.Text)

	if len(req.Audio) > 0 {
		sttCtx, cancel := context.WithTimeout(ctx, o.config.STTTimeout)
		result := o.stt.Transcribe(sttCtx, req.Audio)
		cancel()

		if result.OK() {
			transcriptText = strings.TrimSpace(result.Text)
			userText = transcriptText
		} else {
			logger.Warn("transcription unusable", "status", string(result.Status))
		}
	}

	return transcriptText, userText, userText != ""
}

// generateReply produces the assistant reply. An upstream failure or an empty
// completion substitutes the configured fallback text; fallback is a normal
// outcome here, not an error state.
func (o *Orchestrator) generateReply(ctx context.Context, prompt []core.PromptMessage, userText, model string, logger *core.Logger) core.ReplyResult {
	if !o.config.DisableGreetingShortcut && o.persona.IsGreeting(userText) {
		return core.ReplyResult{Text: o.persona.Greeting}
	}

	if model == "" {
		model = o.config.DefaultModel
	}

	llmCtx, cancel := context.WithTimeout(ctx, o.config.LLMTimeout)
	defer cancel()

	text, err := o.llm.Complete(llmCtx, prompt, model)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("LLM completion failed", "error", err)
		}
		return core.ReplyResult{Text: o.config.FallbackText, Model: model, Fallback: true}
	}
	return core.ReplyResult{Text: strings.TrimSpace(text), Model: model}
}

// synthesizeReply splits the reply and synthesizes each segment in order. A
// failed segment is marked text-fallback and the rest still get audio.
// Fallback replies are not synthesized at all.
func (o *Orchestrator) synthesizeReply(ctx context.Context, reply core.ReplyResult, voiceID string, logger *core.Logger) []core.AudioSegment {
	segments := []core.AudioSegment{}
	if reply.Fallback {
		return segments
	}

	for _, segText := range SplitSegments(reply.Text, o.config.SegmentLimit) {
		spoken := normalizeForTTS(segText)
		if spoken == "" {
			continue
		}

		ttsCtx, cancel := context.WithTimeout(ctx, o.config.TTSTimeout)
		url, err := o.tts.Synthesize(ttsCtx, spoken, voiceID)
		cancel()

		if err != nil || url == "" {
			if err != nil {
				logger.Warn("synthesis failed, falling back to text", "error", err)
			}
			segments = append(segments, core.AudioSegment{Text: segText, TextFallback: true})
			continue
		}
		segments = append(segments, core.AudioSegment{Text: segText, AudioURL: url})
	}
	return segments
}

func (o *Orchestrator) voiceFor(req core.ConversationRequest) string {
	if req.VoiceID != "" {
		return req.VoiceID
	}
	return o.persona.VoiceID
}

func (o *Orchestrator) appendTurn(sessionKey string, role core.Role, content string) {
	o.store.Append(sessionKey, core.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}
