package middleware

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	currentUserKey = "current_user"
	tokenClaimsKey = "token_claims"
)

// Claims is the subset of access-token claims the API relies on.
type Claims struct {
	UserID    uuid.UUID
	ID        string
	ExpiresAt time.Time
}

// CurrentUser returns the user resolved by ResolveUser, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	if user := CurrentUser(c); user != nil {
		return user.ID, nil
	}
	return uuid.Nil, errors.New("no authenticated user in context")
}

// CurrentClaims returns the verified access-token claims for the request.
func CurrentClaims(c *fiber.Ctx) (Claims, bool) {
	claims, ok := c.Locals(tokenClaimsKey).(Claims)
	return claims, ok
}

// RequestID returns the id set by the requestid middleware, if any.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

func tokenClaims(c *fiber.Ctx) (Claims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Claims{}, errors.New("invalid token in context")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return Claims{}, errors.New("missing sub claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, err
	}

	claims := Claims{UserID: userID}
	claims.ID, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
