package api

import (
	"askbase/docs"
	"askbase/internal/api/handlers"
	"askbase/pkg/auth"
	"askbase/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	gapHandler *handlers.GapHandler,
	knowledgeHandler *handlers.KnowledgeHandler,
	sessionHandler *handlers.SessionHandler,
	jwtManager *auth.JWTManager,
	db *pgxpool.Pool,
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

	// Swagger - importing docs registers the generated doc via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Public visitor endpoint
	api.Post("/workspaces/:workspaceID/chat", chatHandler.Chat)

	// Review/management API
	admin := api.Group("/admin", middleware.AdminMiddleware(jwtManager, appLogger))
	admin.Get("/workspaces/:workspaceID/gaps", gapHandler.List)
	admin.Post("/workspaces/:workspaceID/gaps/auto-resolve", gapHandler.AutoResolve)
	admin.Post("/workspaces/:workspaceID/gaps/:gapID/resolve", gapHandler.Resolve)
	admin.Post("/workspaces/:workspaceID/gaps/:gapID/dismiss", gapHandler.Dismiss)
	admin.Post("/workspaces/:workspaceID/knowledge", knowledgeHandler.Create)
	admin.Post("/workspaces/:workspaceID/knowledge/import", knowledgeHandler.Import)
	admin.Put("/workspaces/:workspaceID/knowledge/:pairID", knowledgeHandler.Update)
	admin.Delete("/workspaces/:workspaceID/knowledge/:pairID", knowledgeHandler.Delete)
	admin.Get("/workspaces/:workspaceID/sessions/:token", sessionHandler.Get)

	return app
}
