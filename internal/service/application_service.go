package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/policy"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// ApplicationService drives job applications through the review pipeline.
type ApplicationService struct {
	applications repository.ApplicationRepository
	history      repository.ApplicationHistoryRepository
	companies    repository.CompanyRepository
	memberships  repository.MembershipRepository
	logger       *zap.Logger
	publisher
}

// ApplicationDependencies bundles collaborators for the application service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	HistoryRepo     repository.ApplicationHistoryRepository
	CompanyRepo     repository.CompanyRepository
	MembershipRepo  repository.MembershipRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           func() time.Time
	IDGenerator     func() string
}

// ApplicationListFilter narrows listings.
type ApplicationListFilter struct {
	Statuses []domain.ApplicationStatus
	Limit    int
	Offset   int
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		history:      deps.HistoryRepo,
		companies:    deps.CompanyRepo,
		memberships:  deps.MembershipRepo,
		logger:       nopIfNil(deps.Logger),
		publisher:    newPublisher(deps.Dispatcher, deps.Clock, deps.IDGenerator),
	}
}

// Submit files the actor's application to a job.
func (s *ApplicationService) Submit(ctx context.Context, actor domain.Actor, jobID, resumeRef string) (app *domain.JobApplication, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.Submit", actor, attribute.String("job.id", jobID))
	defer func() { finishSpan(span, err) }()

	resumeRef = strings.TrimSpace(resumeRef)
	if resumeRef == "" {
		return nil, apperrors.NewMissingResume()
	}
	if _, err := s.companies.GetJob(ctx, jobID); err != nil {
		return nil, mapRepoError(err, "job", map[string]any{"job_id": jobID})
	}
	if !actor.IsCandidate() {
		return nil, apperrors.NewForbidden("only candidates can apply to jobs")
	}

	pair := map[string]any{"job_id": jobID, "applicant_id": actor.ID}
	if _, err := s.applications.FindByJobAndApplicant(ctx, jobID, actor.ID); err == nil {
		return nil, apperrors.NewDuplicateApplication(pair)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	app = &domain.JobApplication{
		ID:          s.newID(),
		JobID:       jobID,
		ApplicantID: actor.ID,
		Status:      domain.ApplicationStatusApplied,
		ResumeRef:   resumeRef,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateApplication(pair)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("job_id", jobID),
		zap.String("applicant_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventApplicationSubmitted,
		SubjectID: app.ID,
		ActorID:   actor.ID,
		Payload:   events.ApplicationSubmittedPayload{JobID: jobID, ApplicantID: actor.ID},
	})
	return app, nil
}

var allowedTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.ApplicationStatusApplied:   {domain.ApplicationStatusReviewed, domain.ApplicationStatusInterview, domain.ApplicationStatusHired, domain.ApplicationStatusRejected},
	domain.ApplicationStatusReviewed:  {domain.ApplicationStatusApplied, domain.ApplicationStatusInterview, domain.ApplicationStatusHired, domain.ApplicationStatusRejected},
	domain.ApplicationStatusInterview: {domain.ApplicationStatusApplied, domain.ApplicationStatusReviewed, domain.ApplicationStatusHired, domain.ApplicationStatusRejected},
	domain.ApplicationStatusHired:     {},
	domain.ApplicationStatusRejected:  {},
}

func isValidTransition(current, next domain.ApplicationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// SetStatus moves an application to newStatus on behalf of a reviewer of the job's company.
// The write is a compare-and-set against the status that was validated.
func (s *ApplicationService) SetStatus(ctx context.Context, actor domain.Actor, applicationID string, newStatus domain.ApplicationStatus) (updated *domain.JobApplication, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.SetStatus", actor,
		attribute.String("application.id", applicationID),
		attribute.String("status.new", string(newStatus)))
	defer func() { finishSpan(span, err) }()

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, mapRepoError(err, "application", map[string]any{"application_id": applicationID})
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	if err := s.requireReviewer(ctx, actor, app.JobID); err != nil {
		return nil, err
	}
	if !isValidTransition(app.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition("status change not allowed", map[string]any{
			"from": app.Status,
			"to":   newStatus,
		})
	}

	updated, err = s.applications.UpdateStatus(ctx, applicationID, app.Status, newStatus)
	if err != nil {
		return nil, mapRepoError(err, "application", map[string]any{"application_id": applicationID})
	}

	s.recordStatusChange(ctx, actor.ID, applicationID, app.Status, newStatus)
	s.logger.Info("application status changed",
		zap.String("application_id", applicationID),
		zap.String("old_status", string(app.Status)),
		zap.String("new_status", string(newStatus)),
		zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventApplicationStatusChanged,
		SubjectID: applicationID,
		ActorID:   actor.ID,
		Payload: events.ApplicationStatusChangedPayload{
			ApplicantID: app.ApplicantID,
			OldStatus:   app.Status,
			NewStatus:   newStatus,
		},
	})
	return updated, nil
}

// Withdraw deletes the application. Only the applicant may withdraw, in any status.
func (s *ApplicationService) Withdraw(ctx context.Context, actor domain.Actor, applicationID string) (err error) {
	ctx, span := startSpan(ctx, "ApplicationService.Withdraw", actor, attribute.String("application.id", applicationID))
	defer func() { finishSpan(span, err) }()

	details := map[string]any{"application_id": applicationID}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return mapRepoError(err, "application", details)
	}
	if app.ApplicantID != actor.ID {
		return apperrors.NewForbidden("only the applicant can withdraw an application")
	}
	if err := s.applications.Delete(ctx, applicationID); err != nil {
		return mapRepoError(err, "application", details)
	}

	s.logger.Info("application withdrawn", zap.String("application_id", applicationID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventApplicationWithdrawn,
		SubjectID: applicationID,
		ActorID:   actor.ID,
		Payload:   events.ApplicationWithdrawnPayload{JobID: app.JobID},
	})
	return nil
}

// Get returns one application to its applicant or to a reviewer of the job's company.
func (s *ApplicationService) Get(ctx context.Context, actor domain.Actor, applicationID string) (app *domain.JobApplication, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.Get", actor, attribute.String("application.id", applicationID))
	defer func() { finishSpan(span, err) }()

	return s.readable(ctx, actor, applicationID)
}

// History returns the audit trail of status changes, oldest first.
func (s *ApplicationService) History(ctx context.Context, actor domain.Actor, applicationID string) (entries []domain.ApplicationHistory, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.History", actor, attribute.String("application.id", applicationID))
	defer func() { finishSpan(span, err) }()

	if _, err := s.readable(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	entries, err = s.history.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ListForJob returns a job's applications to reviewers of its company.
func (s *ApplicationService) ListForJob(ctx context.Context, actor domain.Actor, jobID string, filter ApplicationListFilter) (apps []domain.JobApplication, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.ListForJob", actor, attribute.String("job.id", jobID))
	defer func() { finishSpan(span, err) }()

	if err := s.requireReviewer(ctx, actor, jobID); err != nil {
		return nil, err
	}
	apps, err = s.applications.List(ctx, repository.ApplicationFilter{
		JobID:    &jobID,
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return apps, nil
}

// ListForApplicant returns the actor's own applications.
func (s *ApplicationService) ListForApplicant(ctx context.Context, actor domain.Actor, filter ApplicationListFilter) (apps []domain.JobApplication, err error) {
	ctx, span := startSpan(ctx, "ApplicationService.ListForApplicant", actor)
	defer func() { finishSpan(span, err) }()

	apps, err = s.applications.List(ctx, repository.ApplicationFilter{
		ApplicantID: &actor.ID,
		Statuses:    filter.Statuses,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return apps, nil
}

func (s *ApplicationService) readable(ctx context.Context, actor domain.Actor, applicationID string) (*domain.JobApplication, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, mapRepoError(err, "application", map[string]any{"application_id": applicationID})
	}
	if app.ApplicantID == actor.ID {
		return app, nil
	}
	if err := s.requireReviewer(ctx, actor, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

// requireReviewer resolves the job's company and checks the actor may review its applications.
func (s *ApplicationService) requireReviewer(ctx context.Context, actor domain.Actor, jobID string) error {
	job, err := s.companies.GetJob(ctx, jobID)
	if err != nil {
		return mapRepoError(err, "job", map[string]any{"job_id": jobID})
	}
	role, err := roleIn(ctx, s.memberships, job.CompanyID, actor.ID)
	if err != nil {
		return err
	}
	if !policy.CanReviewApplications(role) {
		return apperrors.NewForbidden("only company admins and recruiters can review applications")
	}
	return nil
}

// recordStatusChange writes the audit entry. The status change has already committed,
// so a failure here is logged rather than returned.
func (s *ApplicationService) recordStatusChange(ctx context.Context, actorID, applicationID string, oldStatus, newStatus domain.ApplicationStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.ApplicationHistory{
		ID:            s.newID(),
		ApplicationID: applicationID,
		ChangedBy:     actorID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record application history",
			zap.String("application_id", applicationID),
			zap.Error(err))
	}
}
