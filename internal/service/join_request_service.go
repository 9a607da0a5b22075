package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/policy"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// JoinRequestService creates and resolves join requests in both directions.
type JoinRequestService struct {
	requests    repository.JoinRequestRepository
	memberships repository.MembershipRepository
	companies   repository.CompanyRepository
	users       repository.UserRepository
	logger      *zap.Logger
	publisher
}

// JoinRequestDependencies bundles collaborators for the join request service.
type JoinRequestDependencies struct {
	JoinRequestRepo repository.JoinRequestRepository
	MembershipRepo  repository.MembershipRepository
	CompanyRepo     repository.CompanyRepository
	UserRepo        repository.UserRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           func() time.Time
	IDGenerator     func() string
}

// JoinRequestListFilter narrows listings.
type JoinRequestListFilter struct {
	Status *domain.JoinRequestStatus
	Limit  int
	Offset int
}

// ResolveResult is the outcome of Resolve. Membership is set only on acceptance.
type ResolveResult struct {
	Request    *domain.JoinRequest
	Membership *domain.Membership
}

// NewJoinRequestService constructs the service.
func NewJoinRequestService(deps JoinRequestDependencies) *JoinRequestService {
	return &JoinRequestService{
		requests:    deps.JoinRequestRepo,
		memberships: deps.MembershipRepo,
		companies:   deps.CompanyRepo,
		users:       deps.UserRepo,
		logger:      nopIfNil(deps.Logger),
		publisher:   newPublisher(deps.Dispatcher, deps.Clock, deps.IDGenerator),
	}
}

// RequestToJoin files a user-initiated request from the actor to the company.
func (s *JoinRequestService) RequestToJoin(ctx context.Context, actor domain.Actor, companyID string, roleTitle domain.MemberRole) (req *domain.JoinRequest, err error) {
	ctx, span := startSpan(ctx, "JoinRequestService.RequestToJoin", actor,
		attribute.String("company.id", companyID),
		attribute.String("role.title", string(roleTitle)))
	defer func() { finishSpan(span, err) }()

	if !roleTitle.Valid() {
		return nil, apperrors.NewValidationError("invalid role title", map[string]any{"role_title": roleTitle})
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, mapRepoError(err, "company", map[string]any{"company_id": companyID})
	}
	if actor.IsCandidate() {
		return nil, apperrors.NewForbidden("candidates cannot join companies")
	}

	return s.create(ctx, actor, companyID, actor.ID, roleTitle, domain.OriginUserInitiated)
}

// InviteUser files a company-initiated request on the company's behalf.
func (s *JoinRequestService) InviteUser(ctx context.Context, actor domain.Actor, companyID, targetUserID string, roleTitle domain.MemberRole) (req *domain.JoinRequest, err error) {
	ctx, span := startSpan(ctx, "JoinRequestService.InviteUser", actor,
		attribute.String("company.id", companyID),
		attribute.String("target.id", targetUserID),
		attribute.String("role.title", string(roleTitle)))
	defer func() { finishSpan(span, err) }()

	if !roleTitle.Valid() {
		return nil, apperrors.NewValidationError("invalid role title", map[string]any{"role_title": roleTitle})
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, mapRepoError(err, "company", map[string]any{"company_id": companyID})
	}

	acting, err := roleIn(ctx, s.memberships, companyID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !policy.CanResolveUserInitiatedRequest(acting) {
		return nil, apperrors.NewForbidden("only admins and recruiters can invite")
	}
	if !policy.CanAssignRole(acting, roleTitle) {
		return nil, apperrors.NewForbidden("not allowed to offer role " + string(roleTitle))
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, mapRepoError(err, "user", map[string]any{"user_id": targetUserID})
	}
	if target.IsCandidate() {
		return nil, apperrors.NewForbidden("candidates cannot be invited to companies")
	}

	return s.create(ctx, actor, companyID, targetUserID, roleTitle, domain.OriginCompanyInitiated)
}

func (s *JoinRequestService) create(ctx context.Context, actor domain.Actor, companyID, userID string, roleTitle domain.MemberRole, origin domain.JoinRequestOrigin) (*domain.JoinRequest, error) {
	pair := map[string]any{"company_id": companyID, "user_id": userID}

	if _, err := s.memberships.Get(ctx, companyID, userID); err == nil {
		return nil, apperrors.NewAlreadyMember(pair)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	if existing, err := s.requests.FindPending(ctx, companyID, userID); err == nil {
		pair["request_id"] = existing.ID
		return nil, apperrors.NewDuplicateRequest(pair)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	req := &domain.JoinRequest{
		ID:          s.newID(),
		CompanyID:   companyID,
		UserID:      userID,
		RoleTitle:   roleTitle,
		Origin:      origin,
		Status:      domain.JoinRequestStatusPending,
		RequestedBy: actor.ID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateRequest(pair)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("join request created",
		zap.String("request_id", req.ID),
		zap.String("company_id", companyID),
		zap.String("user_id", userID),
		zap.String("origin", string(origin)))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventJoinRequestCreated,
		SubjectID: req.ID,
		ActorID:   actor.ID,
		Payload: events.JoinRequestCreatedPayload{
			CompanyID: companyID,
			UserID:    userID,
			RoleTitle: roleTitle,
			Origin:    origin,
		},
	})
	return req, nil
}

// Resolve accepts or rejects a pending request. Who may resolve depends on origin:
// a company member with admin or recruiter role for user-initiated requests, the
// invited user for company-initiated ones.
func (s *JoinRequestService) Resolve(ctx context.Context, actor domain.Actor, requestID string, decision domain.Decision) (result *ResolveResult, err error) {
	ctx, span := startSpan(ctx, "JoinRequestService.Resolve", actor,
		attribute.String("request.id", requestID),
		attribute.String("decision", string(decision)))
	defer func() { finishSpan(span, err) }()

	if decision != domain.DecisionAccept && decision != domain.DecisionReject {
		return nil, apperrors.NewValidationError("decision must be accept or reject", map[string]any{"decision": decision})
	}

	notFound := map[string]any{"request_id": requestID}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepoError(err, "join request", notFound)
	}
	if !req.IsPending() {
		return nil, apperrors.NewNotFound("pending join request", notFound)
	}

	switch req.Origin {
	case domain.OriginUserInitiated:
		acting, err := roleIn(ctx, s.memberships, req.CompanyID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !policy.CanResolveUserInitiatedRequest(acting) {
			return nil, apperrors.NewForbidden("only company admins and recruiters can resolve this request")
		}
		if decision == domain.DecisionAccept && !policy.CanAssignRole(acting, req.RoleTitle) {
			return nil, apperrors.NewForbidden("not allowed to grant role " + string(req.RoleTitle))
		}
	case domain.OriginCompanyInitiated:
		if actor.ID != req.UserID {
			return nil, apperrors.NewForbidden("only the invited user can resolve an invitation")
		}
	default:
		return nil, apperrors.NewInternalError(errors.New("join request has unknown origin " + string(req.Origin)))
	}

	at := s.now()
	result = &ResolveResult{}
	conflict := map[string]any{"request_id": requestID}
	if decision == domain.DecisionAccept {
		result.Request, result.Membership, err = s.requests.Accept(ctx, requestID, actor.ID, at)
		if errors.Is(err, repository.ErrStale) || errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("join request was resolved concurrently", conflict)
		}
	} else {
		result.Request, err = s.requests.Reject(ctx, requestID, actor.ID, at)
		if errors.Is(err, repository.ErrStale) {
			return nil, apperrors.NewConflict("join request was resolved concurrently", conflict)
		}
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("join request resolved",
		zap.String("request_id", requestID),
		zap.String("status", string(result.Request.Status)),
		zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventJoinRequestResolved,
		SubjectID: requestID,
		ActorID:   actor.ID,
		Payload: events.JoinRequestResolvedPayload{
			CompanyID: result.Request.CompanyID,
			UserID:    result.Request.UserID,
			Status:    result.Request.Status,
		},
	})
	return result, nil
}

// ListForCompany returns requests and invitations of a company. Admins and recruiters only.
func (s *JoinRequestService) ListForCompany(ctx context.Context, actor domain.Actor, companyID string, filter JoinRequestListFilter) (reqs []domain.JoinRequest, err error) {
	ctx, span := startSpan(ctx, "JoinRequestService.ListForCompany", actor, attribute.String("company.id", companyID))
	defer func() { finishSpan(span, err) }()

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, mapRepoError(err, "company", map[string]any{"company_id": companyID})
	}
	acting, err := roleIn(ctx, s.memberships, companyID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !policy.CanResolveUserInitiatedRequest(acting) {
		return nil, apperrors.NewForbidden("only company admins and recruiters can list join requests")
	}

	reqs, err = s.requests.List(ctx, repository.JoinRequestFilter{
		CompanyID: &companyID,
		Status:    filter.Status,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reqs, nil
}

// ListForUser returns the actor's own requests and the invitations addressed to them.
func (s *JoinRequestService) ListForUser(ctx context.Context, actor domain.Actor, filter JoinRequestListFilter) (reqs []domain.JoinRequest, err error) {
	ctx, span := startSpan(ctx, "JoinRequestService.ListForUser", actor)
	defer func() { finishSpan(span, err) }()

	reqs, err = s.requests.List(ctx, repository.JoinRequestFilter{
		UserID: &actor.ID,
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reqs, nil
}
