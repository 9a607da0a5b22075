package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/config"
	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

var (
	admin      = domain.Actor{ID: "admin-a", GlobalRole: domain.GlobalRoleRecruiter}
	recruiter  = domain.Actor{ID: "recruiter-r", GlobalRole: domain.GlobalRoleRecruiter}
	recruiter2 = domain.Actor{ID: "recruiter-s", GlobalRole: domain.GlobalRoleRecruiter}
	employee   = domain.Actor{ID: "employee-e", GlobalRole: domain.GlobalRoleRecruiter}
	newcomer   = domain.Actor{ID: "user-u", GlobalRole: domain.GlobalRoleRecruiter}
	outsider   = domain.Actor{ID: "outsider-o", GlobalRole: domain.GlobalRoleRecruiter}
	candidate  = domain.Actor{ID: "candidate-x", GlobalRole: domain.GlobalRoleCandidate}
	candidate2 = domain.Actor{ID: "candidate-y", GlobalRole: domain.GlobalRoleCandidate}
)

const (
	companyC = "company-c"
	companyD = "company-d"
	jobJ     = "job-j"
)

type fakeQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *fakeQueue) Enqueue(applicationID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, applicationID)
	return true
}

func (q *fakeQueue) Queued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ids...)
}

type fixture struct {
	store       *memory.Store
	memberships *MembershipService
	joins       *JoinRequestService
	apps        *ApplicationService
	queue       *fakeQueue
}

func seed() memory.Seed {
	return memory.Seed{
		Users: []domain.Actor{admin, recruiter, recruiter2, employee, newcomer, outsider, candidate, candidate2},
		Companies: []domain.Company{
			{ID: companyC, Name: "Acme"},
			{ID: companyD, Name: "Globex"},
		},
		Jobs: []domain.Job{{ID: jobJ, CompanyID: companyC, Title: "Backend engineer"}},
		Memberships: []domain.Membership{
			{CompanyID: companyC, UserID: admin.ID, Role: domain.MemberRoleAdmin},
			{CompanyID: companyC, UserID: recruiter.ID, Role: domain.MemberRoleRecruiter},
			{CompanyID: companyC, UserID: recruiter2.ID, Role: domain.MemberRoleRecruiter},
			{CompanyID: companyC, UserID: employee.ID, Role: domain.MemberRoleEmployee},
			{CompanyID: companyD, UserID: outsider.ID, Role: domain.MemberRoleAdmin},
		},
	}
}

func newFixture(t *testing.T, autoNotify bool) *fixture {
	t.Helper()

	store := memory.NewStore(seed())
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	queue := &fakeQueue{}
	NewNotificationService(dispatcher, queue, zap.NewNop(), config.NotificationConfig{AutoNotify: autoNotify}).RegisterHandlers()

	return &fixture{
		store: store,
		memberships: NewMembershipService(MembershipDependencies{
			MembershipRepo: store.Memberships(),
			CompanyRepo:    store.Companies(),
			Dispatcher:     dispatcher,
		}),
		joins: NewJoinRequestService(JoinRequestDependencies{
			JoinRequestRepo: store.JoinRequests(),
			MembershipRepo:  store.Memberships(),
			CompanyRepo:     store.Companies(),
			UserRepo:        store.Users(),
			Dispatcher:      dispatcher,
		}),
		apps: NewApplicationService(ApplicationDependencies{
			ApplicationRepo: store.Applications(),
			HistoryRepo:     store.History(),
			CompanyRepo:     store.Companies(),
			MembershipRepo:  store.Memberships(),
			Dispatcher:      dispatcher,
		}),
		queue: queue,
	}
}

func (f *fixture) role(t *testing.T, companyID, userID string) domain.MemberRole {
	t.Helper()
	role, err := f.memberships.MembershipOf(context.Background(), companyID, userID)
	require.NoError(t, err)
	return role
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}
