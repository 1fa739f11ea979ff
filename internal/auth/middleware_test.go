package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func newMiddlewareApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User) {
	t.Helper()
	users := memory.NewUserRepository(memory.New())
	user := &domain.User{FirstName: "Sam", LastName: "Student", Email: "sam@example.com", Role: domain.RoleStudent}
	require.NoError(t, users.Create(context.Background(), user))

	tokens := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tokens, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"id": caller.ID, "role": caller.Role, "name": caller.FullName()})
	})
	return app, tokens, user
}

func TestAuthMiddleware_ResolvesCaller(t *testing.T) {
	app, tokens, user := newMiddlewareApp(t)
	// A stale role in the token is ignored in favour of the stored one.
	token, _, err := tokens.GenerateToken(user.ID, domain.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	app, tokens, _ := newMiddlewareApp(t)
	ghostToken, _, err := tokens.GenerateToken("00000000-0000-0000-0000-000000000000", domain.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"unknown user", "Bearer " + ghostToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
