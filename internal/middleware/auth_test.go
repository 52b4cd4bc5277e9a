package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type stubResolver struct {
	users   map[uuid.UUID]*models.User
	revoked map[string]bool
	err     error
}

func (s *stubResolver) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

func (s *stubResolver) Me(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

const testSecret = "guard-secret"

func signToken(t *testing.T, secret, sub, jti string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"jti": jti,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newGuardApp(resolver UserResolver) *fiber.App {
	app := fiber.New()
	cfg := &config.Config{JWTSecret: testSecret}
	app.Get("/private", JWTProtected(cfg), ResolveUser(resolver), func(c *fiber.Ctx) error {
		id, err := CurrentUserID(c)
		if err != nil {
			return err
		}
		claims, _ := CurrentClaims(c)
		return c.JSON(fiber.Map{"id": id.String(), "jti": claims.ID})
	})
	return app
}

func TestGuard(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@campus.test"}
	resolver := &stubResolver{
		users:   map[uuid.UUID]*models.User{user.ID: user},
		revoked: map[string]bool{"logged-out": true},
	}
	app := newGuardApp(resolver)
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + signToken(t, testSecret, user.ID.String(), "ok", future), fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", user.ID.String(), "ok", future), fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, user.ID.String(), "ok", time.Now().Add(-time.Minute)), fiber.StatusUnauthorized},
		{"revoked", "Bearer " + signToken(t, testSecret, user.ID.String(), "logged-out", future), fiber.StatusUnauthorized},
		{"unknown user", "Bearer " + signToken(t, testSecret, uuid.NewString(), "ok", future), fiber.StatusUnauthorized},
		{"bad subject", "Bearer " + signToken(t, testSecret, "not-a-uuid", "ok", future), fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestGuardRevocationStoreDown(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	app := newGuardApp(&stubResolver{
		users: map[uuid.UUID]*models.User{user.ID: user},
		err:   errors.New("redis down"),
	})

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, user.ID.String(), "ok", time.Now().Add(time.Hour)))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}
