package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

const (
	defaultMurfBaseURL = "https://api.murf.ai"
	defaultMurfVoiceID = "en-US-natalie"
	defaultMurfFormat  = "MP3"
)

// MurfTTSConfig holds configuration for the Murf TTS service.
type MurfTTSConfig struct {
	APIKey  string        `json:"api_key"`
	BaseURL string        `json:"base_url"`
	VoiceID string        `json:"voice_id"`
	Format  string        `json:"format"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a default configuration for Murf TTS.
func DefaultConfig() MurfTTSConfig {
	return MurfTTSConfig{
		BaseURL: defaultMurfBaseURL,
		VoiceID: defaultMurfVoiceID,
		Format:  defaultMurfFormat,
		Timeout: 30 * time.Second,
	}
}

// MurfTTS synthesizes speech through Murf's REST API. Each Synthesize call
// converts one pre-split text segment; segments longer than the provider limit
// must be chunked by the caller before reaching this service.
type MurfTTS struct {
	config MurfTTSConfig
	logger *core.Logger
	client *http.Client
}

// NewMurfTTS creates a new Murf TTS service with the provided config.
func NewMurfTTS(config MurfTTSConfig, logger *core.Logger) *MurfTTS {
	if config.BaseURL == "" {
		config.BaseURL = defaultMurfBaseURL
	}
	if config.VoiceID == "" {
		config.VoiceID = defaultMurfVoiceID
	}
	if config.Format == "" {
		config.Format = defaultMurfFormat
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	return &MurfTTS{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Available reports whether the service has credentials to make calls.
func (m *MurfTTS) Available() bool {
	return m.config.APIKey != ""
}

type generateRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
	Format  string `json:"format,omitempty"`
}

// generateResponse mirrors the fields Murf has used across API revisions for
// the audio reference; extractAudioURL picks the first one present.
type generateResponse struct {
	AudioFile string `json:"audioFile"`
	AudioURL  string `json:"audio_url"`
	URL       string `json:"url"`
}

func (r generateResponse) extractAudioURL() string {
	for _, candidate := range []string{r.AudioFile, r.AudioURL, r.URL} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Synthesize converts one text segment into a playable audio URL using the
// given voice (falling back to the configured default voice when empty).
func (m *MurfTTS) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	if !m.Available() {
		return "", errors.New("murf TTS has no API key configured")
	}
	if voiceID == "" {
		voiceID = m.config.VoiceID
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	body, err := sonic.Marshal(generateRequest{
		Text:    text,
		VoiceID: voiceID,
		Format:  m.config.Format,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/v1/speech/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("api-key", m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var resp generateResponse
	if err := m.do(req, &resp); err != nil {
		return "", fmt.Errorf("murf generate: %w", err)
	}

	audioURL := resp.extractAudioURL()
	if audioURL == "" {
		return "", errors.New("murf generate: response carried no audio reference")
	}
	return audioURL, nil
}

type voiceEntry struct {
	VoiceID     string `json:"voiceId"`
	DisplayName string `json:"displayName"`
	Locale      string `json:"locale"`
	Gender      string `json:"gender"`
}

// Voices lists the synthesis voices available to the account.
func (m *MurfTTS) Voices(ctx context.Context) ([]core.Voice, error) {
	if !m.Available() {
		return nil, errors.New("murf TTS has no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.config.BaseURL+"/v1/speech/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", m.config.APIKey)

	var entries []voiceEntry
	if err := m.do(req, &entries); err != nil {
		return nil, fmt.Errorf("murf voices: %w", err)
	}

	voices := make([]core.Voice, 0, len(entries))
	for _, e := range entries {
		voices = append(voices, core.Voice{
			VoiceID:     e.VoiceID,
			DisplayName: e.DisplayName,
			Locale:      e.Locale,
			Gender:      e.Gender,
		})
	}
	return voices, nil
}

func (m *MurfTTS) do(req *http.Request, out any) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}
	return sonic.Unmarshal(data, out)
}
