package repository

import (
	"context"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// ApplicationHistoryRepository stores status change audit entries.
type ApplicationHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ApplicationHistory) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error)
}

type applicationHistoryRepository struct {
	db DB
}

// NewApplicationHistoryRepository builds repository.
func NewApplicationHistoryRepository(db DB) ApplicationHistoryRepository {
	return &applicationHistoryRepository{db: db}
}

func (r *applicationHistoryRepository) Create(ctx context.Context, entry *domain.ApplicationHistory) error {
	const query = `
        INSERT INTO application_history (id, application_id, changed_by, old_status, new_status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		entry.ID,
		entry.ApplicationID,
		entry.ChangedBy,
		entry.OldStatus,
		entry.NewStatus,
	).Scan(&entry.CreatedAt)
}

func (r *applicationHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	const query = `
        SELECT id, application_id, changed_by, old_status, new_status, created_at
        FROM application_history WHERE application_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ApplicationHistory{}
	for rows.Next() {
		var entry domain.ApplicationHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&entry.ChangedBy,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
