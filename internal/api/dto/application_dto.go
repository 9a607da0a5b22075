package dto

import (
	"time"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

// SubmitApplicationRequest payload.
type SubmitApplicationRequest struct {
	ResumeRef string `json:"resume_ref"`
}

// SetApplicationStatusRequest payload.
type SetApplicationStatusRequest struct {
	Status domain.ApplicationStatus `json:"status"`
}

// ApplicationResponse represents a job application.
type ApplicationResponse struct {
	ID          string                   `json:"id"`
	JobID       string                   `json:"job_id"`
	ApplicantID string                   `json:"applicant_id"`
	Status      domain.ApplicationStatus `json:"status"`
	ResumeRef   string                   `json:"resume_ref"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// ApplicationHistoryResponse is one audit entry.
type ApplicationHistoryResponse struct {
	ID        string                   `json:"id"`
	ChangedBy string                   `json:"changed_by"`
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
	CreatedAt time.Time                `json:"created_at"`
}
