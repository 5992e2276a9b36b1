package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rohithkumar20211/murf-voice-agent/agent"
	"github.com/rohithkumar20211/murf-voice-agent/core"
)

// queryRequest is the JSON body accepted by the chat and query endpoints.
type queryRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model,omitempty"`
	VoiceID string `json:"voice_id,omitempty"`
}

// chatResponse is what one orchestration turn returns to the frontend.
type chatResponse struct {
	SessionID      string              `json:"session_id,omitempty"`
	TranscriptText string              `json:"transcript_text,omitempty"`
	LLMText        string              `json:"llm_text"`
	Model          string              `json:"model,omitempty"`
	AudioURLs      []string            `json:"audio_urls"`
	Segments       []core.AudioSegment `json:"segments"`
	Fallback       bool                `json:"fallback,omitempty"`
}

func toChatResponse(sessionID string, result core.TurnResult) chatResponse {
	return chatResponse{
		SessionID:      sessionID,
		TranscriptText: result.TranscriptText,
		LLMText:        result.ReplyText,
		Model:          result.Model,
		AudioURLs:      result.AudioURLs(),
		Segments:       result.Segments,
		Fallback:       result.Fallback,
	}
}

// conversationRequest assembles a ConversationRequest from either a JSON body
// or a multipart form with an optional audio file.
func conversationRequest(c echo.Context, sessionKey string) (core.ConversationRequest, error) {
	req := core.ConversationRequest{SessionKey: sessionKey}

	contentType := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	if strings.Contains(contentType, echo.MIMEApplicationJSON) {
		var body queryRequest
		if err := c.Bind(&body); err != nil {
			return req, err
		}
		req.Text = body.Prompt
		req.Model = body.Model
		req.VoiceID = body.VoiceID
		return req, nil
	}

	audio, err := readAudioFile(c)
	if err != nil {
		return req, err
	}
	req.Audio = audio
	req.Text = c.FormValue("prompt")
	req.Model = c.FormValue("model")
	req.VoiceID = c.FormValue("voice_id")
	return req, nil
}

// AgentChat runs one conversation turn for a session.
// POST /agent/chat/:session_id
func (h *Handler) AgentChat(c echo.Context) error {
	sessionID := c.Param("session_id")

	req, err := conversationRequest(c, sessionID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "malformed request")
	}

	result, err := h.orchestratorFor(c).ProcessTurn(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyRequest) {
			return jsonError(c, http.StatusBadRequest, "request needs audio or text")
		}
		h.logger.Error("chat turn failed", "session", sessionID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "turn failed")
	}

	return c.JSON(http.StatusOK, toChatResponse(sessionID, result))
}

// LLMQuery runs one history-free cycle: text or audio in, reply and audio out.
// POST /llm/query
func (h *Handler) LLMQuery(c echo.Context) error {
	req, err := conversationRequest(c, "")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "malformed request")
	}

	result, err := h.orchestratorFor(c).OneShot(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyRequest) {
			return jsonError(c, http.StatusBadRequest, "request needs audio or text")
		}
		h.logger.Error("llm query failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}

	return c.JSON(http.StatusOK, toChatResponse("", result))
}
