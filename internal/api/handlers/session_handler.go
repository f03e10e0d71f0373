package handlers

import (
	"errors"
	"time"

	"askbase/internal/dto"
	"askbase/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *repository.SessionRepository
	logger   *zap.Logger
}

func NewSessionHandler(sessions *repository.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Get godoc
// @Summary Inspect a conversation transcript
// @Tags sessions
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param token path string true "Conversation token"
// @Security Bearer
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string
// @Router /admin/workspaces/{workspaceID}/sessions/{token} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace id"})
	}

	token := c.Params("token")
	session, err := h.sessions.GetByToken(c.UserContext(), workspaceID, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		h.logger.Error("Failed to load session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load session"})
	}

	resp := dto.SessionResponse{
		ID:                session.ID.String(),
		ConversationToken: session.ConversationToken,
		Escalated:         session.Escalated,
		TurnCount:         len(session.Turns),
		Turns:             make([]dto.SessionTurn, 0, len(session.Turns)),
	}
	if session.EscalatedAt != nil {
		resp.EscalatedAt = session.EscalatedAt.Format(time.RFC3339)
	}
	for _, turn := range session.Turns {
		resp.Turns = append(resp.Turns, dto.SessionTurn{
			MessageID:         turn.MessageID,
			Role:              string(turn.Role),
			Content:           turn.Content,
			Timestamp:         turn.Timestamp.Format(time.RFC3339),
			Confidence:        turn.Confidence,
			SuggestionChips:   turn.SuggestionChips,
			GapDetected:       turn.GapDetected,
			EscalationOffered: turn.EscalationOffered,
		})
	}
	return c.JSON(resp)
}
