package handlers

import (
	"errors"

	"spendlens/internal/dto"
	"spendlens/internal/recommend"
	"spendlens/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InsightHandler struct {
	insightService *service.InsightService
	logger         *zap.Logger
}

func NewInsightHandler(insightService *service.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		logger:         logger,
	}
}

// currentUserID reads the authenticated user id stored by the auth
// middleware.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}

func (h *InsightHandler) GetInsights(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	insights, err := h.insightService.GetInsights(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Failed to compute insights", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute insights",
		})
	}

	return c.JSON(insights)
}

func (h *InsightHandler) GetPersonaHistory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	history, err := h.insightService.PersonaHistory(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Failed to load persona history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load persona history",
		})
	}

	return c.JSON(dto.ToPersonaHistoryResponses(history))
}

func (h *InsightHandler) GenerateRecommendations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	recommendations, generated, err := h.insightService.GenerateRecommendations(c.Context(), userID)
	if err != nil {
		return h.generationError(c, err)
	}

	status := fiber.StatusOK
	if generated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.GenerateResponse{
		Generated:       generated,
		Recommendations: dto.ToRecommendationResponses(recommendations),
	})
}

func (h *InsightHandler) RegenerateRecommendations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	recommendations, err := h.insightService.RegenerateRecommendations(c.Context(), userID)
	if err != nil {
		return h.generationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.GenerateResponse{
		Generated:       true,
		Recommendations: dto.ToRecommendationResponses(recommendations),
	})
}

func (h *InsightHandler) ListRecommendations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	recommendations, err := h.insightService.ListRecommendations(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Failed to list recommendations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list recommendations",
		})
	}

	return c.JSON(dto.ToRecommendationResponses(recommendations))
}

func (h *InsightHandler) GetTrace(c *fiber.Ctx) error {
	recommendationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid recommendation id",
		})
	}

	trace, err := h.insightService.GetTrace(c.Context(), recommendationID)
	if err != nil {
		if errors.Is(err, service.ErrTraceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Decision trace not found",
			})
		}
		h.logger.Error("Failed to load decision trace", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load decision trace",
		})
	}

	// The payload is the canonical trace document; return it as-is.
	return c.Type("json").Send(trace.Payload)
}

func (h *InsightHandler) generationError(c *fiber.Ctx, err error) error {
	var consistency *recommend.ConsistencyError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case errors.Is(err, service.ErrConsentRequired):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Consent required before generating recommendations",
		})
	case errors.As(err, &consistency):
		h.logger.Error("Generation aborted on inconsistent state", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Generation aborted: inconsistent analysis state",
		})
	}
	h.logger.Error("Recommendation generation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Recommendation generation failed",
	})
}
