package handlers

import (
	"errors"
	"time"

	"askbase/internal/dto"
	"askbase/internal/models"
	"askbase/internal/repository"
	"askbase/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GapHandler struct {
	gaps   *service.GapService
	logger *zap.Logger
}

func NewGapHandler(gaps *service.GapService, logger *zap.Logger) *GapHandler {
	return &GapHandler{
		gaps:   gaps,
		logger: logger,
	}
}

// List godoc
// @Summary List knowledge gaps
// @Tags gaps
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param status query string false "Gap status (open, resolved, dismissed)" default(open)
// @Security Bearer
// @Success 200 {array} dto.GapResponse
// @Router /admin/workspaces/{workspaceID}/gaps [get]
func (h *GapHandler) List(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace id"})
	}

	status := models.GapStatus(c.Query("status", string(models.GapStatusOpen)))
	switch status {
	case models.GapStatusOpen, models.GapStatusResolved, models.GapStatusDismissed:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	gaps, err := h.gaps.List(c.UserContext(), workspaceID, status)
	if err != nil {
		h.logger.Error("Failed to list gaps", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list gaps"})
	}

	out := make([]dto.GapResponse, 0, len(gaps))
	for _, gap := range gaps {
		out = append(out, toGapResponse(gap))
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary Resolve a gap with a curated answer
// @Tags gaps
// @Accept json
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param gapID path string true "Gap ID"
// @Param request body dto.ResolveGapRequest true "Curated answer"
// @Security Bearer
// @Success 200 {object} dto.KnowledgeResponse
// @Router /admin/workspaces/{workspaceID}/gaps/{gapID}/resolve [post]
func (h *GapHandler) Resolve(c *fiber.Ctx) error {
	gapID, err := uuid.Parse(c.Params("gapID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gap id"})
	}

	var req dto.ResolveGapRequest
	if err := c.BodyParser(&req); err != nil || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Answer is required"})
	}

	pair, err := h.gaps.Resolve(c.UserContext(), gapID, req.Answer, req.Category)
	if err != nil {
		return h.gapError(c, err)
	}
	return c.JSON(toKnowledgeResponse(pair))
}

// Dismiss godoc
// @Summary Dismiss a gap without answering it
// @Tags gaps
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param gapID path string true "Gap ID"
// @Security Bearer
// @Success 204
// @Router /admin/workspaces/{workspaceID}/gaps/{gapID}/dismiss [post]
func (h *GapHandler) Dismiss(c *fiber.Ctx) error {
	gapID, err := uuid.Parse(c.Params("gapID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gap id"})
	}

	if err := h.gaps.Dismiss(c.UserContext(), gapID); err != nil {
		return h.gapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AutoResolve godoc
// @Summary Re-check all open gaps against the current knowledge base
// @Tags gaps
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.AutoResolveResponse
// @Router /admin/workspaces/{workspaceID}/gaps/auto-resolve [post]
func (h *GapHandler) AutoResolve(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace id"})
	}

	report, err := h.gaps.AutoResolve(c.UserContext(), workspaceID)
	if err != nil {
		h.logger.Error("Auto-resolve failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Auto-resolve failed"})
	}
	return c.JSON(dto.AutoResolveResponse{
		Checked:  report.Checked,
		Resolved: report.Resolved,
		Errors:   report.Errors,
	})
}

func (h *GapHandler) gapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gap not found"})
	case errors.Is(err, service.ErrGapClosed), errors.Is(err, repository.ErrGapNotOpen):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Gap is already resolved or dismissed"})
	default:
		h.logger.Error("Gap operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Gap operation failed"})
	}
}

func toGapResponse(gap *models.KnowledgeGap) dto.GapResponse {
	resp := dto.GapResponse{
		ID:              gap.ID.String(),
		Question:        gap.Question,
		AIAnswer:        gap.AIAnswer,
		SimilarityScore: gap.SimilarityScore,
		Status:          string(gap.Status),
		CreatedAt:       gap.CreatedAt.Format(time.RFC3339),
	}
	if gap.BestMatchID != nil {
		resp.BestMatchID = gap.BestMatchID.String()
	}
	if gap.ResolvedPairID != nil {
		resp.ResolvedPairID = gap.ResolvedPairID.String()
	}
	return resp
}
