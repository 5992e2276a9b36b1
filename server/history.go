package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	TS      string `json:"ts"`
}

type historyResponse struct {
	SessionID string           `json:"session_id"`
	History   []historyMessage `json:"history"`
}

// GetHistory returns the full ordered history for a session.
// GET /agent/history/:session_id
func (h *Handler) GetHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	turns := h.store.Read(sessionID)
	messages := make([]historyMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, historyMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
			TS:      turn.Timestamp.Format(time.RFC3339Nano),
		})
	}

	return c.JSON(http.StatusOK, historyResponse{
		SessionID: sessionID,
		History:   messages,
	})
}

// ClearHistory drops all turns for a session.
// DELETE /agent/history/:session_id
func (h *Handler) ClearHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	h.store.Clear(sessionID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"cleared":    true,
	})
}
