package routes

import (
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Item    *handlers.ItemHandler
	Message *handlers.MessageHandler
}

func Setup(app *fiber.App, cfg *config.Config, users middleware.UserResolver, h Handlers) {
	// Images written by the file driver are served by this process.
	if cfg.StorageDriver == "file" {
		app.Static("/uploads", cfg.StorageBaseDir, fiber.Static{Browse: false})
	}

	api := app.Group("/api")

	// Guard: signature check, then revocation and user lookup.
	// Applied per route so public routes never see it.
	authed := []fiber.Handler{middleware.JWTProtected(cfg), middleware.ResolveUser(users)}
	protect := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, authed...), handler)
	}

	api.Get("/health", h.Health.Check)

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", protect(h.Auth.Logout)...)
	auth.Get("/me", protect(h.Auth.Me)...)

	// Fixed paths are registered before /:id.
	items := api.Group("/items")
	items.Get("/", h.Item.ListAll)
	items.Post("/", protect(h.Item.Create)...)
	items.Get("/lost", h.Item.ListLost)
	items.Get("/found", h.Item.ListFound)
	items.Get("/my-items", protect(h.Item.ListMine)...)
	items.Get("/:id", h.Item.Get)
	items.Put("/:id", protect(h.Item.Update)...)
	items.Delete("/:id", protect(h.Item.Delete)...)

	messages := api.Group("/messages")
	messages.Get("/report/:reportId", h.Message.ListByReport)
	messages.Post("/report/:reportId", protect(h.Message.Create)...)
	messages.Delete("/:id", protect(h.Message.Delete)...)
}
