package repository

import (
	"context"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// UserRepository looks up accounts mirrored from the upstream identity service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	const query = `SELECT id, global_role FROM users WHERE id=$1`

	var actor domain.Actor
	if err := r.db.QueryRow(ctx, query, id).Scan(&actor.ID, &actor.GlobalRole); err != nil {
		return nil, translate(err)
	}
	return &actor, nil
}
