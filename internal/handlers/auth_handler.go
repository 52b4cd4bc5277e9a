package handlers

import (
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, "login", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, "refresh", err)
	}

	return c.JSON(resp)
}

// Logout accepts an optional refresh token in the body.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.authService.Logout(c.UserContext(), req.RefreshToken, claims.ID, claims.ExpiresAt); err != nil {
		return respondError(c, "logout", err)
	}

	return c.JSON(dto.StatusResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}
	return c.JSON(dto.MeResponse{User: services.UserResponse(user)})
}
