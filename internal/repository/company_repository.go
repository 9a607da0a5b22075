package repository

import (
	"context"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// CompanyRepository reads companies and their job posts. Both are written upstream.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
}

type companyRepository struct {
	db DB
}

// NewCompanyRepository constructs repository.
func NewCompanyRepository(db DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `SELECT id, name, created_at FROM companies WHERE id=$1`
	var company domain.Company
	if err := r.db.QueryRow(ctx, query, id).Scan(&company.ID, &company.Name, &company.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (r *companyRepository) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	const query = `SELECT id, company_id, title, created_at FROM jobs WHERE id=$1`
	var job domain.Job
	if err := r.db.QueryRow(ctx, query, jobID).Scan(&job.ID, &job.CompanyID, &job.Title, &job.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &job, nil
}
