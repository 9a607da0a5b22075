package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	JobID       *string
	ApplicantID *string
	Statuses    []domain.ApplicationStatus
	Limit       int
	Offset      int
}

// ApplicationRepository encapsulates job application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.JobApplication) error
	GetByID(ctx context.Context, id string) (*domain.JobApplication, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.JobApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]domain.JobApplication, error)
	UpdateStatus(ctx context.Context, id string, expected, status domain.ApplicationStatus) (*domain.JobApplication, error)
	Delete(ctx context.Context, id string) error
}

type applicationRepository struct {
	db DB
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(db DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, job_id, applicant_id, status, resume_ref, created_at, updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	const query = `
        INSERT INTO job_applications (id, job_id, applicant_id, status, resume_ref)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.Status,
		app.ResumeRef,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	return translate(err)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *applicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE job_id=$1 AND applicant_id=$2`
	return r.fetchSingle(ctx, query, jobID, applicantID)
}

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.JobApplication, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]domain.JobApplication, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		clauses = append(clauses, fmt.Sprintf("job_id=$%d", len(args)))
	}
	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		clauses = append(clauses, fmt.Sprintf("applicant_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM job_applications WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		applicationColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

// UpdateStatus writes status only if the row still holds expected.
func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, expected, status domain.ApplicationStatus) (*domain.JobApplication, error) {
	const query = `
        UPDATE job_applications SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + applicationColumns

	app, err := scanApplication(r.db.QueryRow(ctx, query, status, id, expected))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM job_applications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var app domain.JobApplication
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.ApplicantID,
		&app.Status,
		&app.ResumeRef,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
