package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret")
	token, expiresAt, err := tm.GenerateToken(domain.Actor{ID: "u1", GlobalRole: domain.GlobalRoleCandidate}, time.Minute)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, domain.GlobalRoleCandidate, claims.GlobalRole)

	_, err = NewTokenManager("other").ParseToken(token)
	assert.Error(t, err)

	noSubject, _, err := tm.GenerateToken(domain.Actor{GlobalRole: domain.GlobalRoleCandidate}, time.Minute)
	require.NoError(t, err)
	_, err = tm.ParseToken(noSubject)
	assert.Error(t, err)
}

func TestTokenDirectory(t *testing.T) {
	tm := NewTokenManager("secret")
	store := memory.NewStore(memory.Seed{
		Users: []domain.Actor{{ID: "u1", GlobalRole: domain.GlobalRoleRecruiter}},
	})
	ctx := context.Background()

	// the stored record wins over the token's claim
	token, _, err := tm.GenerateToken(domain.Actor{ID: "u1", GlobalRole: domain.GlobalRoleCandidate}, time.Minute)
	require.NoError(t, err)
	actor, err := NewTokenDirectory(tm, store.Users()).Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.GlobalRoleRecruiter, actor.GlobalRole)

	unknown, _, err := tm.GenerateToken(domain.Actor{ID: "u2", GlobalRole: domain.GlobalRoleCandidate}, time.Minute)
	require.NoError(t, err)
	_, err = NewTokenDirectory(tm, store.Users()).Resolve(ctx, unknown)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	claimsOnly := NewTokenDirectory(tm, nil)
	actor, err = claimsOnly.Resolve(ctx, unknown)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "u2", GlobalRole: domain.GlobalRoleCandidate}, *actor)

	badRole, _, err := tm.GenerateToken(domain.Actor{ID: "u3", GlobalRole: "superuser"}, time.Minute)
	require.NoError(t, err)
	_, err = claimsOnly.Resolve(ctx, badRole)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = claimsOnly.Resolve(ctx, "garbage")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestMiddlewareAndRoleGuards(t *testing.T) {
	tm := NewTokenManager("secret")
	mw := NewAuthMiddleware(NewTokenDirectory(tm, nil))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/open", RequireActor(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/who", mw.Handle, RequireActor(), func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !assert.True(t, ok) {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(actor.ID)
	})
	app.Get("/candidates", mw.Handle, RequireGlobalRole(domain.GlobalRoleCandidate), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(path, header string) int {
		req := httptest.NewRequest("GET", path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	candidate, _, err := tm.GenerateToken(domain.Actor{ID: "c1", GlobalRole: domain.GlobalRoleCandidate}, time.Minute)
	require.NoError(t, err)
	recruiter, _, err := tm.GenerateToken(domain.Actor{ID: "r1", GlobalRole: domain.GlobalRoleRecruiter}, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, call("/open", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call("/who", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call("/who", "Basic abc"))
	assert.Equal(t, fiber.StatusOK, call("/who", "Bearer "+candidate))
	assert.Equal(t, fiber.StatusOK, call("/candidates", "bearer "+candidate))
	assert.Equal(t, fiber.StatusForbidden, call("/candidates", "Bearer "+recruiter))
}
