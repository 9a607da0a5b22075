package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/repository"
)

func pendingRequest(id, companyID, userID string) *domain.JoinRequest {
	return &domain.JoinRequest{
		ID:          id,
		CompanyID:   companyID,
		UserID:      userID,
		RoleTitle:   domain.MemberRoleEmployee,
		Origin:      domain.OriginUserInitiated,
		Status:      domain.JoinRequestStatusPending,
		RequestedBy: userID,
	}
}

func TestJoinRequests_OnePendingPerPair(t *testing.T) {
	store := NewStore(Seed{})
	ctx := context.Background()
	repo := store.JoinRequests()

	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "c1", "u1")))
	err := repo.Create(ctx, pendingRequest("r2", "c1", "u1"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.Reject(ctx, "r1", "admin", time.Now())
	require.NoError(t, err)

	// a rejected request does not block a fresh one
	require.NoError(t, repo.Create(ctx, pendingRequest("r3", "c1", "u1")))
}

func TestJoinRequests_ConcurrentAcceptCreatesOneMembership(t *testing.T) {
	store := NewStore(Seed{})
	ctx := context.Background()
	require.NoError(t, store.JoinRequests().Create(ctx, pendingRequest("r1", "c1", "u1")))

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = store.JoinRequests().Accept(ctx, "r1", "resolver", time.Now())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrStale)
	}
	assert.Equal(t, 1, wins)

	members, err := store.Memberships().ListByCompany(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, domain.MemberRoleEmployee, members[0].Role)
}

func TestJoinRequests_AcceptRefusesExistingMembership(t *testing.T) {
	store := NewStore(Seed{Memberships: []domain.Membership{
		{CompanyID: "c1", UserID: "u1", Role: domain.MemberRoleEmployee},
	}})
	ctx := context.Background()
	require.NoError(t, store.JoinRequests().Create(ctx, pendingRequest("r1", "c1", "u1")))

	_, _, err := store.JoinRequests().Accept(ctx, "r1", "resolver", time.Now())
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	req, err := store.JoinRequests().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusPending, req.Status)
}

func TestMemberships_CompareAndSet(t *testing.T) {
	store := NewStore(Seed{Memberships: []domain.Membership{
		{CompanyID: "c1", UserID: "u1", Role: domain.MemberRoleEmployee},
	}})
	ctx := context.Background()
	repo := store.Memberships()

	_, err := repo.UpdateRole(ctx, "c1", "u1", domain.MemberRoleAdmin, domain.MemberRoleRecruiter)
	assert.ErrorIs(t, err, repository.ErrStale)

	updated, err := repo.UpdateRole(ctx, "c1", "u1", domain.MemberRoleEmployee, domain.MemberRoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleRecruiter, updated.Role)

	assert.ErrorIs(t, repo.Delete(ctx, "c1", "u1", domain.MemberRoleEmployee), repository.ErrStale)
	require.NoError(t, repo.Delete(ctx, "c1", "u1", domain.MemberRoleRecruiter))

	_, err = repo.Get(ctx, "c1", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApplications_UniquePerJobAndApplicant(t *testing.T) {
	store := NewStore(Seed{})
	ctx := context.Background()
	repo := store.Applications()

	first := &domain.JobApplication{ID: "a1", JobID: "j1", ApplicantID: "x", Status: domain.ApplicationStatusApplied, ResumeRef: "blob://1"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &domain.JobApplication{ID: "a2", JobID: "j1", ApplicantID: "x", Status: domain.ApplicationStatusApplied, ResumeRef: "blob://2"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)

	stored, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "blob://1", stored.ResumeRef)

	list, err := repo.List(ctx, repository.ApplicationFilter{ApplicantID: strPtr("x")})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "a1"))
	assert.ErrorIs(t, repo.Delete(ctx, "a1"), repository.ErrNotFound)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, paginate(items, 2, 2))
	assert.Equal(t, []int{}, paginate(items, 2, 10))
	assert.Equal(t, items, paginate(items, 0, 0))
}

func strPtr(s string) *string { return &s }
