package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/policy"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// MembershipService changes and removes existing memberships. New memberships are
// only ever created by accepting a join request.
type MembershipService struct {
	memberships repository.MembershipRepository
	companies   repository.CompanyRepository
	logger      *zap.Logger
	publisher
}

// MembershipDependencies bundles collaborators for the membership service.
type MembershipDependencies struct {
	MembershipRepo repository.MembershipRepository
	CompanyRepo    repository.CompanyRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
	IDGenerator    func() string
}

// NewMembershipService constructs the service.
func NewMembershipService(deps MembershipDependencies) *MembershipService {
	return &MembershipService{
		memberships: deps.MembershipRepo,
		companies:   deps.CompanyRepo,
		logger:      nopIfNil(deps.Logger),
		publisher:   newPublisher(deps.Dispatcher, deps.Clock, deps.IDGenerator),
	}
}

// MembershipOf returns the user's role in the company, MemberRoleNone if not a member.
func (s *MembershipService) MembershipOf(ctx context.Context, companyID, userID string) (domain.MemberRole, error) {
	return roleIn(ctx, s.memberships, companyID, userID)
}

// ListMembers returns the company roster. Only members may read it.
func (s *MembershipService) ListMembers(ctx context.Context, actor domain.Actor, companyID string) (members []domain.Membership, err error) {
	ctx, span := startSpan(ctx, "MembershipService.ListMembers", actor, attribute.String("company.id", companyID))
	defer func() { finishSpan(span, err) }()

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, mapRepoError(err, "company", map[string]any{"company_id": companyID})
	}
	role, err := roleIn(ctx, s.memberships, companyID, actor.ID)
	if err != nil {
		return nil, err
	}
	if role == domain.MemberRoleNone {
		return nil, apperrors.NewForbidden("only members can list the company's members")
	}

	members, err = s.memberships.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// UpdateRole changes the target's role. The write only lands if the target still holds
// the role the permission check was evaluated against.
func (s *MembershipService) UpdateRole(ctx context.Context, actor domain.Actor, companyID, targetUserID string, newRole domain.MemberRole) (updated *domain.Membership, err error) {
	ctx, span := startSpan(ctx, "MembershipService.UpdateRole", actor,
		attribute.String("company.id", companyID),
		attribute.String("target.id", targetUserID),
		attribute.String("role.new", string(newRole)))
	defer func() { finishSpan(span, err) }()

	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": newRole})
	}

	acting, target, err := s.loadPair(ctx, companyID, actor.ID, targetUserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManage(actor.ID, acting.Role, targetUserID, target.Role) {
		return nil, apperrors.NewForbidden("not allowed to manage this member")
	}
	if !policy.CanAssignRole(acting.Role, newRole) {
		return nil, apperrors.NewForbidden("not allowed to assign role " + string(newRole))
	}
	if target.Role == newRole {
		return target, nil
	}

	updated, err = s.memberships.UpdateRole(ctx, companyID, targetUserID, target.Role, newRole)
	if err != nil {
		return nil, mapRepoError(err, "membership", map[string]any{"company_id": companyID, "user_id": targetUserID})
	}

	s.logger.Info("membership role changed",
		zap.String("company_id", companyID),
		zap.String("user_id", targetUserID),
		zap.String("old_role", string(target.Role)),
		zap.String("new_role", string(newRole)),
		zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventMembershipRoleChanged,
		SubjectID: targetUserID,
		ActorID:   actor.ID,
		Payload: events.MembershipRoleChangedPayload{
			CompanyID: companyID,
			UserID:    targetUserID,
			OldRole:   target.Role,
			NewRole:   newRole,
		},
	})
	return updated, nil
}

// Remove deletes the target's membership under the same rules as UpdateRole,
// minus the role-assignment check.
func (s *MembershipService) Remove(ctx context.Context, actor domain.Actor, companyID, targetUserID string) (err error) {
	ctx, span := startSpan(ctx, "MembershipService.Remove", actor,
		attribute.String("company.id", companyID),
		attribute.String("target.id", targetUserID))
	defer func() { finishSpan(span, err) }()

	acting, target, err := s.loadPair(ctx, companyID, actor.ID, targetUserID)
	if err != nil {
		return err
	}
	if !policy.CanManage(actor.ID, acting.Role, targetUserID, target.Role) {
		return apperrors.NewForbidden("not allowed to manage this member")
	}

	if err := s.memberships.Delete(ctx, companyID, targetUserID, target.Role); err != nil {
		return mapRepoError(err, "membership", map[string]any{"company_id": companyID, "user_id": targetUserID})
	}

	s.logger.Info("membership removed",
		zap.String("company_id", companyID),
		zap.String("user_id", targetUserID),
		zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventMembershipRemoved,
		SubjectID: targetUserID,
		ActorID:   actor.ID,
		Payload: events.MembershipRemovedPayload{
			CompanyID: companyID,
			UserID:    targetUserID,
			Role:      target.Role,
		},
	})
	return nil
}

func (s *MembershipService) loadPair(ctx context.Context, companyID, actorID, targetUserID string) (*domain.Membership, *domain.Membership, error) {
	acting, err := s.memberships.Get(ctx, companyID, actorID)
	if err != nil {
		return nil, nil, mapRepoError(err, "membership", map[string]any{"company_id": companyID, "user_id": actorID})
	}
	target, err := s.memberships.Get(ctx, companyID, targetUserID)
	if err != nil {
		return nil, nil, mapRepoError(err, "membership", map[string]any{"company_id": companyID, "user_id": targetUserID})
	}
	return acting, target, nil
}
