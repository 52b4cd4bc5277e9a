package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP statuses. Server-side failures
// are logged and answered with a generic message.
func respondError(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		attrs := []any{"action", action, "request_id", middleware.RequestID(c), "error", err}
		if user := middleware.CurrentUser(c); user != nil {
			attrs = append(attrs, "user_id", user.ID.String())
		}
		slog.Error("request failed", attrs...)
		msg = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
