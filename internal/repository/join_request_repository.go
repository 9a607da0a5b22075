package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// JoinRequestFilter narrows join request listings.
type JoinRequestFilter struct {
	CompanyID *string
	UserID    *string
	Status    *domain.JoinRequestStatus
	Limit     int
	Offset    int
}

// JoinRequestRepository persists join requests and is the only writer of new memberships.
type JoinRequestRepository interface {
	Create(ctx context.Context, req *domain.JoinRequest) error
	GetByID(ctx context.Context, id string) (*domain.JoinRequest, error)
	FindPending(ctx context.Context, companyID, userID string) (*domain.JoinRequest, error)
	List(ctx context.Context, filter JoinRequestFilter) ([]domain.JoinRequest, error)
	Accept(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, *domain.Membership, error)
	Reject(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, error)
}

type joinRequestRepository struct {
	db DB
}

// NewJoinRequestRepository returns a Postgres-backed implementation.
func NewJoinRequestRepository(db DB) JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

const joinRequestColumns = `id, company_id, user_id, role_title, origin, status, requested_by, requested_at, resolved_by, resolved_at`

// Create inserts a pending request. The partial unique index on pending pairs turns a
// concurrent duplicate into ErrDuplicate.
func (r *joinRequestRepository) Create(ctx context.Context, req *domain.JoinRequest) error {
	const query = `
        INSERT INTO join_requests (id, company_id, user_id, role_title, origin, status, requested_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING requested_at`

	err := r.db.QueryRow(ctx, query,
		req.ID,
		req.CompanyID,
		req.UserID,
		req.RoleTitle,
		req.Origin,
		req.Status,
		req.RequestedBy,
	).Scan(&req.RequestedAt)
	return translate(err)
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE id=$1`
	req, err := scanJoinRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

func (r *joinRequestRepository) FindPending(ctx context.Context, companyID, userID string) (*domain.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + `
        FROM join_requests WHERE company_id=$1 AND user_id=$2 AND status='pending'`
	req, err := scanJoinRequest(r.db.QueryRow(ctx, query, companyID, userID))
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

func (r *joinRequestRepository) List(ctx context.Context, filter JoinRequestFilter) ([]domain.JoinRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM join_requests WHERE %s ORDER BY requested_at DESC LIMIT %d OFFSET %d`,
		joinRequestColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.JoinRequest{}
	for rows.Next() {
		req, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

// Accept flips a pending request to accepted and inserts the membership in one transaction.
// ErrStale means another resolver got there first; ErrDuplicate means the membership already exists.
func (r *joinRequestRepository) Accept(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, *domain.Membership, error) {
	const resolve = `
        UPDATE join_requests SET status='accepted', resolved_by=$2, resolved_at=$3
        WHERE id=$1 AND status='pending'
        RETURNING ` + joinRequestColumns
	const insertMembership = `
        INSERT INTO memberships (company_id, user_id, role)
        VALUES ($1,$2,$3)
        RETURNING created_at, updated_at`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := scanJoinRequest(tx.QueryRow(ctx, resolve, id, resolvedBy, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrStale
	}
	if err != nil {
		return nil, nil, err
	}

	membership := &domain.Membership{
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Role:      req.RoleTitle,
	}
	if err := tx.QueryRow(ctx, insertMembership,
		membership.CompanyID,
		membership.UserID,
		membership.Role,
	).Scan(&membership.CreatedAt, &membership.UpdatedAt); err != nil {
		return nil, nil, translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return req, membership, nil
}

// Reject flips a pending request to rejected. ErrStale if it is no longer pending.
func (r *joinRequestRepository) Reject(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, error) {
	const query = `
        UPDATE join_requests SET status='rejected', resolved_by=$2, resolved_at=$3
        WHERE id=$1 AND status='pending'
        RETURNING ` + joinRequestColumns

	req, err := scanJoinRequest(r.db.QueryRow(ctx, query, id, resolvedBy, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func scanJoinRequest(row pgx.Row) (*domain.JoinRequest, error) {
	var req domain.JoinRequest
	if err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&req.UserID,
		&req.RoleTitle,
		&req.Origin,
		&req.Status,
		&req.RequestedBy,
		&req.RequestedAt,
		&req.ResolvedBy,
		&req.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
