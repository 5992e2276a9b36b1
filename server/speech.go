package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url"`
	Message  string `json:"message"`
}

const ttsFallbackMessage = "I'm having trouble connecting right now. Please try again."

// TranscribeFile transcribes an uploaded audio file.
// POST /transcribe/file
func (h *Handler) TranscribeFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "file is required")
	}
	audio, err := readUpload(fh)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "could not read file")
	}

	result := h.stt.Transcribe(c.Request().Context(), audio)
	return c.JSON(http.StatusOK, result)
}

// GenerateTTS synthesizes one text snippet. Failures come back as a fallback
// message with an empty URL, never as an error page.
// POST /generate-tts
func (h *Handler) GenerateTTS(c echo.Context) error {
	var req ttsRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "malformed request")
	}
	if strings.TrimSpace(req.Text) == "" {
		return jsonError(c, http.StatusBadRequest, "text is required")
	}

	audioURL, err := h.tts.Synthesize(c.Request().Context(), req.Text, req.VoiceID)
	if err != nil || audioURL == "" {
		if err != nil {
			h.logger.Warn("tts generate failed", "error", err)
		}
		return c.JSON(http.StatusOK, ttsResponse{AudioURL: "", Message: ttsFallbackMessage})
	}

	return c.JSON(http.StatusOK, ttsResponse{AudioURL: audioURL, Message: "Audio generated successfully"})
}

// GetVoices lists the available synthesis voices. An upstream failure reads
// as an empty list.
// GET /voices
func (h *Handler) GetVoices(c echo.Context) error {
	voices, err := h.tts.Voices(c.Request().Context())
	if err != nil {
		h.logger.Warn("voice listing failed", "error", err)
		return c.JSON(http.StatusOK, []core.Voice{})
	}
	if voices == nil {
		voices = []core.Voice{}
	}
	return c.JSON(http.StatusOK, voices)
}

type echoResponse struct {
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audio_url"`
	Message    string `json:"message"`
}

// TTSEcho transcribes the uploaded audio and speaks it back with the persona
// voice.
// POST /tts/echo
func (h *Handler) TTSEcho(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "file is required")
	}
	audio, err := readUpload(fh)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "could not read file")
	}

	ctx := c.Request().Context()
	result := h.stt.Transcribe(ctx, audio)
	if !result.OK() {
		return c.JSON(http.StatusOK, echoResponse{Message: ttsFallbackMessage})
	}
	transcript := strings.TrimSpace(result.Text)

	audioURL, err := h.tts.Synthesize(ctx, transcript, h.orch.Persona().VoiceID)
	if err != nil || audioURL == "" {
		if err != nil {
			h.logger.Warn("echo synthesis failed", "error", err)
		}
		return c.JSON(http.StatusOK, echoResponse{Transcript: transcript, Message: ttsFallbackMessage})
	}

	return c.JSON(http.StatusOK, echoResponse{
		Transcript: transcript,
		AudioURL:   audioURL,
		Message:    "Audio transcribed and regenerated successfully",
	})
}
