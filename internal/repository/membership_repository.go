package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// MembershipRepository reads and mutates company memberships.
// Rows are only ever inserted by JoinRequestRepository.Accept.
type MembershipRepository interface {
	Get(ctx context.Context, companyID, userID string) (*domain.Membership, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Membership, error)
	UpdateRole(ctx context.Context, companyID, userID string, expected, role domain.MemberRole) (*domain.Membership, error)
	Delete(ctx context.Context, companyID, userID string, expected domain.MemberRole) error
}

type membershipRepository struct {
	db DB
}

// NewMembershipRepository returns a Postgres-backed implementation.
func NewMembershipRepository(db DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Get(ctx context.Context, companyID, userID string) (*domain.Membership, error) {
	const query = `
        SELECT company_id, user_id, role, created_at, updated_at
        FROM memberships WHERE company_id=$1 AND user_id=$2`

	var m domain.Membership
	if err := r.db.QueryRow(ctx, query, companyID, userID).Scan(
		&m.CompanyID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *membershipRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Membership, error) {
	const query = `
        SELECT company_id, user_id, role, created_at, updated_at
        FROM memberships WHERE company_id=$1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Membership{}
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.CompanyID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// UpdateRole overwrites the role only if it still equals expected.
func (r *membershipRepository) UpdateRole(ctx context.Context, companyID, userID string, expected, role domain.MemberRole) (*domain.Membership, error) {
	const query = `
        UPDATE memberships SET role=$1, updated_at=NOW()
        WHERE company_id=$2 AND user_id=$3 AND role=$4
        RETURNING company_id, user_id, role, created_at, updated_at`

	var m domain.Membership
	err := r.db.QueryRow(ctx, query, role, companyID, userID, expected).Scan(
		&m.CompanyID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Delete removes the membership only if its role still equals expected.
func (r *membershipRepository) Delete(ctx context.Context, companyID, userID string, expected domain.MemberRole) error {
	const query = `DELETE FROM memberships WHERE company_id=$1 AND user_id=$2 AND role=$3`

	cmd, err := r.db.Exec(ctx, query, companyID, userID, expected)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}
