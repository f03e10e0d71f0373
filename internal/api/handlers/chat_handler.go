package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"askbase/internal/dto"
	"askbase/internal/llm"
	"askbase/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat          *service.ChatService
	streamTimeout time.Duration
	logger        *zap.Logger
}

func NewChatHandler(chat *service.ChatService, streamTimeout time.Duration, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:          chat,
		streamTimeout: streamTimeout,
		logger:        logger,
	}
}

// Chat godoc
// @Summary Send a visitor message
// @Description Answers a visitor message from the workspace knowledge base, either as a single JSON response or as an SSE stream
// @Tags chat
// @Accept json
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param request body dto.ChatRequest true "Visitor message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /workspaces/{workspaceID}/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid workspace id",
		})
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Streaming is caller-driven: explicit flag or content negotiation.
	if req.Stream || strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream") {
		return h.streamChat(c, workspaceID, &req)
	}

	resp, err := h.chat.Send(c.UserContext(), workspaceID, &req)
	if err != nil {
		return h.chatError(c, err)
	}
	return c.JSON(resp)
}

func (h *ChatHandler) streamChat(c *fiber.Ctx, workspaceID uuid.UUID, req *dto.ChatRequest) error {
	// The stream writer runs after this handler returns, so the generation
	// context must outlive the request context.
	ctx, cancel := context.WithTimeout(context.Background(), h.streamTimeout)

	cs, err := h.chat.SendStream(ctx, workspaceID, req)
	if err != nil {
		cancel()
		return h.chatError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for chunk := range cs.Fragments() {
			if chunk.Err != nil {
				writeSSE(w, "error", dto.StreamError{Error: chunk.Err.Error()})
				return
			}
			if chunk.Delta != "" {
				writeSSE(w, "token", dto.StreamToken{Content: chunk.Delta})
			}
		}

		resp, err := cs.Final()
		if err != nil {
			writeSSE(w, "error", dto.StreamError{Error: err.Error()})
			return
		}
		writeSSE(w, "done", dto.StreamDone{
			Answer:            resp.Answer,
			SuggestionChips:   resp.SuggestionChips,
			Confidence:        resp.Confidence,
			GapDetected:       resp.GapDetected,
			EscalationOffered: resp.EscalationOffered,
			BookingURL:        resp.BookingURL,
			MatchedPairs:      resp.MatchedPairs,
			SessionID:         resp.SessionID,
			TurnCount:         resp.TurnCount,
		})
	}))

	return nil
}

func writeSSE(w *bufio.Writer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	_ = w.Flush()
}

func (h *ChatHandler) chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrMessageTooLong),
		errors.Is(err, service.ErrMissingToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrWorkspaceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, llm.ErrNoCredential):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.Error("Chat request failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "The assistant is temporarily unavailable"})
	}
}
