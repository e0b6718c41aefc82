package handlers

import (
	"errors"

	"spendlens/internal/dto"
	"spendlens/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ConsentHandler struct {
	consentService *service.ConsentService
	logger         *zap.Logger
}

func NewConsentHandler(consentService *service.ConsentService, logger *zap.Logger) *ConsentHandler {
	return &ConsentHandler{
		consentService: consentService,
		logger:         logger,
	}
}

func (h *ConsentHandler) UpdateConsent(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	var req dto.ConsentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.consentService.Update(c.Context(), userID, req.Consent, "api", req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Failed to update consent", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update consent",
		})
	}

	resp := dto.ConsentResponse{
		UserID:  user.ID.String(),
		Consent: user.ConsentStatus,
	}
	if user.ConsentUpdatedAt != nil {
		resp.UpdatedAt = user.ConsentUpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return c.JSON(resp)
}

func (h *ConsentHandler) GetConsentHistory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid user identity",
		})
	}

	logs, err := h.consentService.History(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Failed to load consent history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load consent history",
		})
	}

	return c.JSON(dto.ToConsentLogResponses(logs))
}
