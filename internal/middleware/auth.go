package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserResolver is the part of the credential service the guard needs.
type UserResolver interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// ResolveUser runs after JWTProtected. It rejects logged-out tokens and
// tokens whose user no longer exists, then stores the user for handlers.
func ResolveUser(users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokenClaims(c)
		if err != nil {
			return unauthorized(c, "Unauthorized: invalid token claims")
		}

		if claims.ID != "" {
			revoked, err := users.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				slog.Error("revocation lookup failed", "action", "resolve_user", "request_id", RequestID(c), "error", err)
				return internalError(c)
			}
			if revoked {
				return unauthorized(c, "Unauthorized: token has been revoked")
			}
		}

		user, err := users.Me(c.UserContext(), claims.UserID)
		if errors.Is(err, services.ErrNotFound) {
			return unauthorized(c, "Unauthorized: user no longer exists")
		}
		if err != nil {
			slog.Error("user lookup failed", "action", "resolve_user", "request_id", RequestID(c), "error", err)
			return internalError(c)
		}

		c.Locals(currentUserKey, user)
		c.Locals(tokenClaimsKey, claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: msg,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Internal server error",
	})
}
