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

type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
	logger    *zap.Logger
}

func NewKnowledgeHandler(knowledge *service.KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledge: knowledge,
		logger:    logger,
	}
}

// Create godoc
// @Summary Add a knowledge pair
// @Tags knowledge
// @Accept json
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param request body dto.KnowledgeItem true "Question and answer"
// @Security Bearer
// @Success 201 {object} dto.KnowledgeResponse
// @Router /admin/workspaces/{workspaceID}/knowledge [post]
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace id"})
	}

	var item dto.KnowledgeItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pair, err := h.knowledge.Create(c.UserContext(), workspaceID, item)
	if err != nil {
		return h.knowledgeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toKnowledgeResponse(pair))
}

// Update godoc
// @Summary Update a knowledge pair
// @Description Rewrites a pair; changing the question regenerates its embedding
// @Tags knowledge
// @Accept json
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param pairID path string true "Pair ID"
// @Param request body dto.KnowledgeItem true "Question and answer"
// @Security Bearer
// @Success 200 {object} dto.KnowledgeResponse
// @Router /admin/workspaces/{workspaceID}/knowledge/{pairID} [put]
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	pairID, err := uuid.Parse(c.Params("pairID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pair id"})
	}

	var item dto.KnowledgeItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pair, err := h.knowledge.Update(c.UserContext(), pairID, item)
	if err != nil {
		return h.knowledgeError(c, err)
	}
	return c.JSON(toKnowledgeResponse(pair))
}

// Delete godoc
// @Summary Deactivate a knowledge pair
// @Description Soft delete: the pair stops matching but its row is kept
// @Tags knowledge
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param pairID path string true "Pair ID"
// @Security Bearer
// @Success 204
// @Router /admin/workspaces/{workspaceID}/knowledge/{pairID} [delete]
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	pairID, err := uuid.Parse(c.Params("pairID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pair id"})
	}

	if err := h.knowledge.Deactivate(c.UserContext(), pairID); err != nil {
		return h.knowledgeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import godoc
// @Summary Bulk import knowledge pairs
// @Description Imports structured question/answer items and schedules a best-effort gap auto-resolve pass
// @Tags knowledge
// @Accept json
// @Produce json
// @Param workspaceID path string true "Workspace ID"
// @Param request body dto.ImportKnowledgeRequest true "Items to import"
// @Security Bearer
// @Success 200 {object} dto.ImportKnowledgeResponse
// @Router /admin/workspaces/{workspaceID}/knowledge/import [post]
func (h *KnowledgeHandler) Import(c *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(c.Params("workspaceID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workspace id"})
	}

	var req dto.ImportKnowledgeRequest
	if err := c.BodyParser(&req); err != nil || len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Items are required"})
	}

	imported, failed, err := h.knowledge.Import(c.UserContext(), workspaceID, req.Items)
	if err != nil {
		h.logger.Error("Knowledge import failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Import failed"})
	}
	return c.JSON(dto.ImportKnowledgeResponse{
		Imported: imported,
		Failed:   failed,
	})
}

func (h *KnowledgeHandler) knowledgeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyPair):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Knowledge pair not found"})
	default:
		h.logger.Error("Knowledge operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Knowledge operation failed"})
	}
}

func toKnowledgeResponse(pair *models.KnowledgePair) dto.KnowledgeResponse {
	return dto.KnowledgeResponse{
		ID:        pair.ID.String(),
		Question:  pair.Question,
		Answer:    pair.Answer,
		Category:  pair.Category,
		IsActive:  pair.IsActive,
		CreatedAt: pair.CreatedAt.Format(time.RFC3339),
		UpdatedAt: pair.UpdatedAt.Format(time.RFC3339),
	}
}
