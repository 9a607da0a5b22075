package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

func TestJoinFlow_RequestAcceptPromoteAndSelfEscalation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	p1, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusPending, p1.Status)
	assert.Equal(t, domain.OriginUserInitiated, p1.Origin)
	assert.Equal(t, newcomer.ID, p1.RequestedBy)

	res, err := f.joins.Resolve(ctx, recruiter, p1.ID, domain.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusAccepted, res.Request.Status)
	require.NotNil(t, res.Request.ResolvedBy)
	assert.Equal(t, recruiter.ID, *res.Request.ResolvedBy)
	require.NotNil(t, res.Membership)
	assert.Equal(t, domain.MemberRoleEmployee, res.Membership.Role)

	updated, err := f.memberships.UpdateRole(ctx, admin, companyC, newcomer.ID, domain.MemberRoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleRecruiter, updated.Role)

	_, err = f.memberships.UpdateRole(ctx, newcomer, companyC, newcomer.ID, domain.MemberRoleAdmin)
	requireCode(t, err, apperrors.CodeForbidden)
	assert.Equal(t, domain.MemberRoleRecruiter, f.role(t, companyC, newcomer.ID))
}

func TestRequestToJoin_Rejections(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.joins.RequestToJoin(ctx, candidate, companyC, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.joins.RequestToJoin(ctx, employee, companyC, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeAlreadyMember)

	_, err = f.joins.RequestToJoin(ctx, newcomer, "nowhere", domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRole("ceo"))
	requireCode(t, err, apperrors.CodeValidation)

	first, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)
	_, err = f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleRecruiter)
	requireCode(t, err, apperrors.CodeDuplicateRequest)

	// a pending invitation also counts as the pair's pending request
	_, err = f.joins.InviteUser(ctx, admin, companyC, newcomer.ID, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeDuplicateRequest)

	_, err = f.joins.Resolve(ctx, admin, first.ID, domain.DecisionReject)
	require.NoError(t, err)

	again, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestInviteUser(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.joins.InviteUser(ctx, employee, companyC, newcomer.ID, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.joins.InviteUser(ctx, outsider, companyC, newcomer.ID, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.joins.InviteUser(ctx, recruiter, companyC, newcomer.ID, domain.MemberRoleAdmin)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.joins.InviteUser(ctx, recruiter, companyC, candidate.ID, domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.joins.InviteUser(ctx, recruiter, companyC, "ghost", domain.MemberRoleEmployee)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.joins.InviteUser(ctx, recruiter, companyC, employee.ID, domain.MemberRoleRecruiter)
	requireCode(t, err, apperrors.CodeAlreadyMember)

	inv, err := f.joins.InviteUser(ctx, recruiter, companyC, newcomer.ID, domain.MemberRoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginCompanyInitiated, inv.Origin)
	assert.Equal(t, newcomer.ID, inv.UserID)
	assert.Equal(t, recruiter.ID, inv.RequestedBy)

	adminInv, err := f.joins.InviteUser(ctx, admin, companyC, outsider.ID, domain.MemberRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleAdmin, adminInv.RoleTitle)
}

func TestResolve_CompanyInitiatedOnlyByInvitee(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	inv, err := f.joins.InviteUser(ctx, admin, companyC, newcomer.ID, domain.MemberRoleEmployee)
	require.NoError(t, err)

	for _, actor := range []domain.Actor{admin, recruiter, employee, outsider} {
		_, err := f.joins.Resolve(ctx, actor, inv.ID, domain.DecisionAccept)
		requireCode(t, err, apperrors.CodeForbidden)
		_, err = f.joins.Resolve(ctx, actor, inv.ID, domain.DecisionReject)
		requireCode(t, err, apperrors.CodeForbidden)
	}

	res, err := f.joins.Resolve(ctx, newcomer, inv.ID, domain.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleEmployee, res.Membership.Role)
	assert.Equal(t, domain.MemberRoleEmployee, f.role(t, companyC, newcomer.ID))
}

func TestResolve_UserInitiatedOnlyByAdminOrRecruiter(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	req, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)

	for _, actor := range []domain.Actor{employee, outsider, newcomer} {
		_, err := f.joins.Resolve(ctx, actor, req.ID, domain.DecisionAccept)
		requireCode(t, err, apperrors.CodeForbidden)
	}

	res, err := f.joins.Resolve(ctx, admin, req.ID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusRejected, res.Request.Status)
	assert.Nil(t, res.Membership)
	assert.Equal(t, domain.MemberRoleNone, f.role(t, companyC, newcomer.ID))

	// terminal requests never reopen
	_, err = f.joins.Resolve(ctx, admin, req.ID, domain.DecisionAccept)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestResolve_RecruiterCannotGrantAdmin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	req, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleAdmin)
	require.NoError(t, err)

	_, err = f.joins.Resolve(ctx, recruiter, req.ID, domain.DecisionAccept)
	requireCode(t, err, apperrors.CodeForbidden)

	// rejecting needs no role grant
	res, err := f.joins.Resolve(ctx, recruiter, req.ID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusRejected, res.Request.Status)

	req, err = f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleAdmin)
	require.NoError(t, err)
	res, err = f.joins.Resolve(ctx, admin, req.ID, domain.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleAdmin, res.Membership.Role)
}

func TestResolve_InputErrors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.joins.Resolve(ctx, admin, "missing", domain.DecisionAccept)
	requireCode(t, err, apperrors.CodeNotFound)

	req, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)
	_, err = f.joins.Resolve(ctx, admin, req.ID, domain.Decision("maybe"))
	requireCode(t, err, apperrors.CodeValidation)
}

// pauseAfterRead holds every GetByID until all racers have read the request,
// so each of them passes the pending check before any write happens.
type pauseAfterRead struct {
	repository.JoinRequestRepository
	reads *sync.WaitGroup
}

func (p pauseAfterRead) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	req, err := p.JoinRequestRepository.GetByID(ctx, id)
	p.reads.Done()
	p.reads.Wait()
	return req, err
}

func TestResolve_ConcurrentAcceptProducesOneMembership(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	req, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)

	racers := []domain.Actor{recruiter, recruiter2}
	var reads sync.WaitGroup
	reads.Add(len(racers))
	svc := NewJoinRequestService(JoinRequestDependencies{
		JoinRequestRepo: pauseAfterRead{JoinRequestRepository: f.store.JoinRequests(), reads: &reads},
		MembershipRepo:  f.store.Memberships(),
		CompanyRepo:     f.store.Companies(),
		UserRepo:        f.store.Users(),
	})

	var wg sync.WaitGroup
	errs := make([]error, len(racers))
	for i, actor := range racers {
		wg.Add(1)
		go func(i int, actor domain.Actor) {
			defer wg.Done()
			_, errs[i] = svc.Resolve(ctx, actor, req.ID, domain.DecisionAccept)
		}(i, actor)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			conflicts++
			assert.True(t, apperrors.ToDomainError(err).Retryable())
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	members, err := f.store.Memberships().ListByCompany(ctx, companyC)
	require.NoError(t, err)
	count := 0
	for _, m := range members {
		if m.UserID == newcomer.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRequestToJoin_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	const racers = 6
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		requireCode(t, err, apperrors.CodeDuplicateRequest)
	}
	assert.Equal(t, 1, created)
}

func TestListJoinRequests(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.joins.RequestToJoin(ctx, newcomer, companyC, domain.MemberRoleEmployee)
	require.NoError(t, err)
	_, err = f.joins.InviteUser(ctx, outsider, companyD, newcomer.ID, domain.MemberRoleRecruiter)
	require.NoError(t, err)

	mine, err := f.joins.ListForUser(ctx, newcomer, JoinRequestListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending := domain.JoinRequestStatusPending
	forC, err := f.joins.ListForCompany(ctx, recruiter, companyC, JoinRequestListFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, forC, 1)
	assert.Equal(t, companyC, forC[0].CompanyID)

	_, err = f.joins.ListForCompany(ctx, employee, companyC, JoinRequestListFilter{})
	requireCode(t, err, apperrors.CodeForbidden)
}
