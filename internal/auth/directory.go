package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// ActorDirectory turns a bearer token into the caller's identity.
type ActorDirectory interface {
	Resolve(ctx context.Context, token string) (*domain.Actor, error)
}

// TokenDirectory verifies JWTs and, when a user repository is wired, confirms the
// account still exists and takes its global role from the stored record.
type TokenDirectory struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewTokenDirectory constructs a directory. users may be nil.
func NewTokenDirectory(tokens *TokenManager, users repository.UserRepository) *TokenDirectory {
	return &TokenDirectory{tokens: tokens, users: users}
}

// Resolve implements ActorDirectory.
func (d *TokenDirectory) Resolve(ctx context.Context, token string) (*domain.Actor, error) {
	claims, err := d.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	if d.users == nil {
		if !claims.GlobalRole.Valid() {
			return nil, apperrors.NewUnauthorized("unknown global role")
		}
		return &domain.Actor{ID: claims.Subject, GlobalRole: claims.GlobalRole}, nil
	}

	actor, err := d.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return actor, nil
}
