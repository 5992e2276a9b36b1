package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

const defaultAssemblyAIBaseURL = "https://api.assemblyai.com"

// AssemblyAIConfig holds configuration options for AssemblyAI transcription.
type AssemblyAIConfig struct {
	APIKey       string        `json:"api_key"`
	BaseURL      string        `json:"base_url"`
	SpeechModel  string        `json:"speech_model"`
	LanguageCode string        `json:"language_code"`
	PollInterval time.Duration `json:"poll_interval"`
	Timeout      time.Duration `json:"timeout"`
}

// DefaultConfig returns a default configuration for AssemblyAI STT.
func DefaultConfig() *AssemblyAIConfig {
	return &AssemblyAIConfig{
		BaseURL:      defaultAssemblyAIBaseURL,
		PollInterval: 500 * time.Millisecond,
		Timeout:      60 * time.Second,
	}
}

// AssemblyAISTTService transcribes audio through AssemblyAI's async REST API:
// upload the bytes, create a transcript job, poll until it settles. Upstream
// failures never surface as errors; they are mapped into the result status so
// the caller's turn can degrade instead of failing.
type AssemblyAISTTService struct {
	config *AssemblyAIConfig
	logger *core.Logger
	client *http.Client
}

// NewAssemblyAISTTService creates a new AssemblyAI STT service instance.
// Use DefaultConfig() to get a config with sensible defaults and override only
// what you need.
func NewAssemblyAISTTService(config *AssemblyAIConfig, logger *core.Logger) *AssemblyAISTTService {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultAssemblyAIBaseURL
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	return &AssemblyAISTTService{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Available reports whether the service has credentials to make calls.
func (s *AssemblyAISTTService) Available() bool {
	return s.config.APIKey != ""
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	SpeechModel  string `json:"speech_model,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // queued, processing, completed, error
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe uploads the audio bytes and waits for the transcript. One attempt
// per call; retry policy belongs to the caller.
func (s *AssemblyAISTTService) Transcribe(ctx context.Context, audio []byte) core.TranscriptResult {
	if !s.Available() {
		return core.TranscriptResult{Status: core.TranscriptUnavailable}
	}
	if len(audio) == 0 {
		return core.TranscriptResult{Status: core.TranscriptError}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	uploadURL, err := s.upload(ctx, audio)
	if err != nil {
		s.logger.Warn("AssemblyAI upload failed", "error", err)
		return core.TranscriptResult{Status: core.TranscriptError}
	}

	transcriptID, err := s.createTranscript(ctx, uploadURL)
	if err != nil {
		s.logger.Warn("AssemblyAI transcript create failed", "error", err)
		return core.TranscriptResult{Status: core.TranscriptError}
	}

	return s.pollTranscript(ctx, transcriptID)
}

func (s *AssemblyAISTTService) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.config.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var resp uploadResponse
	if err := s.do(req, &resp); err != nil {
		return "", err
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return resp.UploadURL, nil
}

func (s *AssemblyAISTTService) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := sonic.Marshal(transcriptRequest{
		AudioURL:     audioURL,
		SpeechModel:  s.config.SpeechModel,
		LanguageCode: s.config.LanguageCode,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var resp transcriptResponse
	if err := s.do(req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("transcript response missing id")
	}
	return resp.ID, nil
}

// pollTranscript polls the transcript job until it completes, errors out, or
// the context deadline hits.
func (s *AssemblyAISTTService) pollTranscript(ctx context.Context, transcriptID string) core.TranscriptResult {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"/v2/transcript/"+transcriptID, nil)
		if err != nil {
			return core.TranscriptResult{Status: core.TranscriptError}
		}
		req.Header.Set("Authorization", s.config.APIKey)

		var resp transcriptResponse
		if err := s.do(req, &resp); err != nil {
			s.logger.Warn("AssemblyAI transcript poll failed", "error", err)
			return core.TranscriptResult{Status: core.TranscriptError}
		}

		switch resp.Status {
		case "completed":
			return core.TranscriptResult{Text: resp.Text, Status: core.TranscriptCompleted}
		case "error":
			s.logger.Warn("AssemblyAI transcript error", "error", resp.Error)
			return core.TranscriptResult{Status: core.TranscriptError}
		}

		select {
		case <-ctx.Done():
			s.logger.Warn("AssemblyAI transcript timed out", "transcript_id", transcriptID)
			return core.TranscriptResult{Status: core.TranscriptError}
		case <-ticker.C:
		}
	}
}

func (s *AssemblyAISTTService) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
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
