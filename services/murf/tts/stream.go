package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

const defaultMurfStreamURL = "wss://api.murf.ai/v1/tts/stream"

// MurfStreamConfig holds configuration for the Murf streaming TTS client.
type MurfStreamConfig struct {
	APIKey     string `json:"api_key"`
	StreamURL  string `json:"stream_url"`
	VoiceID    string `json:"voice_id"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
}

// MurfStream is a WebSocket client for Murf's streaming synthesis. One
// connection carries one voice; text chunks go out as they arrive and audio
// comes back base64-encoded. The chunked-URL REST path stays the orchestrator's
// contract; this client exists for callers that want incremental delivery.
type MurfStream struct {
	config MurfStreamConfig
	logger *core.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	contextID string
	connected bool
}

// ── wire messages ─────────────────────────────────────────────────────────────

type streamConfigMessage struct {
	Type       string `json:"type"`
	ContextID  string `json:"context_id"`
	VoiceID    string `json:"voice_id"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
}

type streamTextMessage struct {
	Type      string `json:"type"`
	ContextID string `json:"context_id"`
	Content   string `json:"content"`
}

type streamServerMessage struct {
	Type    string `json:"type"` // "audio", "error", "done"
	Audio   string `json:"audio,omitempty"`
	Final   bool   `json:"final,omitempty"`
	Message string `json:"message,omitempty"`
}

// ── client ────────────────────────────────────────────────────────────────────

// NewMurfStream creates a streaming client with sensible defaults.
func NewMurfStream(config MurfStreamConfig, logger *core.Logger) *MurfStream {
	if config.StreamURL == "" {
		config.StreamURL = defaultMurfStreamURL
	}
	if config.VoiceID == "" {
		config.VoiceID = defaultMurfVoiceID
	}
	if config.Format == "" {
		config.Format = defaultMurfFormat
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 16000
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &MurfStream{
		config: config,
		logger: logger,
	}
}

// Connect dials the streaming endpoint and sends the session config frame.
func (s *MurfStream) Connect(ctx context.Context) error {
	if s.config.APIKey == "" {
		return errors.New("murf stream has no API key configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+s.config.APIKey)
	headers.Set("X-Voice-ID", s.config.VoiceID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.config.StreamURL, headers)
	if err != nil {
		return fmt.Errorf("murf stream connect: %w", err)
	}

	s.conn = conn
	s.contextID = uuid.NewString()
	s.connected = true

	cfg, err := sonic.Marshal(streamConfigMessage{
		Type:       "config",
		ContextID:  s.contextID,
		VoiceID:    s.config.VoiceID,
		Format:     s.config.Format,
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		s.closeLocked()
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, cfg); err != nil {
		s.closeLocked()
		return fmt.Errorf("murf stream config: %w", err)
	}

	s.logger.Info("connected to Murf streaming TTS", "voice_id", s.config.VoiceID)
	return nil
}

// SendText submits one text chunk for synthesis.
func (s *MurfStream) SendText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected || s.conn == nil {
		return errors.New("murf stream not connected")
	}

	msg, err := sonic.Marshal(streamTextMessage{
		Type:      "text",
		ContextID: s.contextID,
		Content:   text,
	})
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		s.closeLocked()
		return fmt.Errorf("murf stream send: %w", err)
	}
	return nil
}

// ReceiveAudio blocks for the next audio frame and returns the decoded bytes.
// A "done" frame returns (nil, false, nil); final reports whether the frame
// closed out the current utterance.
func (s *MurfStream) ReceiveAudio() (audio []byte, final bool, err error) {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.mu.Unlock()
	if !connected || conn == nil {
		return nil, false, errors.New("murf stream not connected")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.closeLocked()
			s.mu.Unlock()
			return nil, false, fmt.Errorf("murf stream read: %w", err)
		}

		var msg streamServerMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("murf stream sent unparseable frame", "error", err)
			continue
		}

		switch msg.Type {
		case "audio":
			decoded, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, false, fmt.Errorf("murf stream audio decode: %w", err)
			}
			return decoded, msg.Final, nil
		case "done":
			return nil, false, nil
		case "error":
			return nil, false, fmt.Errorf("murf stream: %s", msg.Message)
		default:
			// Ignore keepalives and unknown frame types.
		}
	}
}

// Close shuts the connection down.
func (s *MurfStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *MurfStream) closeLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connected = false
}
