package handlers

import (
	"errors"

	"spendlens/internal/dto"
	"spendlens/internal/models"
	"spendlens/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OperatorHandler struct {
	operatorService *service.OperatorService
	batchService    *service.BatchService
	logger          *zap.Logger
}

func NewOperatorHandler(operatorService *service.OperatorService, batchService *service.BatchService, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
		batchService:    batchService,
		logger:          logger,
	}
}

func (h *OperatorHandler) GetQueue(c *fiber.Ctx) error {
	status := models.RecommendationStatus(c.Query("status", string(models.StatusPending)))
	limit := c.QueryInt("limit", 50)
	if limit < 0 {
		limit = 50
	}

	queue, err := h.operatorService.Queue(c.Context(), status, uint64(limit))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Queue status must be pending or flagged",
			})
		}
		h.logger.Error("Failed to load review queue", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load review queue",
		})
	}

	return c.JSON(dto.ToRecommendationResponses(queue))
}

func (h *OperatorHandler) Review(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid recommendation id",
		})
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	rec, err := h.operatorService.Review(c.Context(), id, models.RecommendationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecommendationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Recommendation not found",
			})
		case errors.Is(err, service.ErrInvalidStatus):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Invalid status transition",
			})
		}
		h.logger.Error("Review failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Review failed",
		})
	}

	return c.JSON(dto.ToRecommendationResponse(*rec))
}

func (h *OperatorHandler) BatchGenerate(c *fiber.Ctx) error {
	var req dto.BatchGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.UserIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_ids must not be empty",
		})
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user id: " + raw,
			})
		}
		userIDs = append(userIDs, id)
	}

	results := h.batchService.GenerateForUsers(c.Context(), userIDs)
	return c.JSON(fiber.Map{
		"results": results,
	})
}
