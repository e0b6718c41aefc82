package api

import (
	"spendlens/internal/api/handlers"
	"spendlens/pkg/auth"
	"spendlens/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	insightHandler *handlers.InsightHandler,
	consentHandler *handlers.ConsentHandler,
	operatorHandler *handlers.OperatorHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	protected.Get("/insights", insightHandler.GetInsights)
	protected.Get("/persona/history", insightHandler.GetPersonaHistory)

	recommendations := protected.Group("/recommendations")
	recommendations.Get("", insightHandler.ListRecommendations)
	recommendations.Post("/generate", insightHandler.GenerateRecommendations)
	recommendations.Post("/regenerate", insightHandler.RegenerateRecommendations)
	recommendations.Get("/:id/trace", insightHandler.GetTrace)

	consent := protected.Group("/consent")
	consent.Put("", consentHandler.UpdateConsent)
	consent.Get("/history", consentHandler.GetConsentHistory)

	operator := protected.Group("/operator")
	operator.Get("/queue", operatorHandler.GetQueue)
	operator.Post("/recommendations/:id/review", operatorHandler.Review)
	operator.Post("/batch/generate", operatorHandler.BatchGenerate)

	return app
}
