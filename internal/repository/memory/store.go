// Package memory provides mutex-guarded implementations of the repository
// interfaces with the same uniqueness and compare-and-set guarantees as Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	"github.com/spec-kit/hiring-workflow/internal/repository"
)

type pairKey struct {
	a string
	b string
}

// Seed holds fixtures owned by upstream services: accounts, companies, jobs and
// founding memberships written when a company is created.
type Seed struct {
	Users       []domain.Actor
	Companies   []domain.Company
	Jobs        []domain.Job
	Memberships []domain.Membership
}

// Store keeps every collection behind a single lock.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	users        map[string]domain.Actor
	companies    map[string]domain.Company
	jobs         map[string]domain.Job
	memberships  map[pairKey]domain.Membership
	joinRequests map[string]domain.JoinRequest
	applications map[string]domain.JobApplication
	history      map[string][]domain.ApplicationHistory
}

// NewStore builds a store populated from seed.
func NewStore(seed Seed) *Store {
	s := &Store{
		now:          time.Now,
		users:        make(map[string]domain.Actor),
		companies:    make(map[string]domain.Company),
		jobs:         make(map[string]domain.Job),
		memberships:  make(map[pairKey]domain.Membership),
		joinRequests: make(map[string]domain.JoinRequest),
		applications: make(map[string]domain.JobApplication),
		history:      make(map[string][]domain.ApplicationHistory),
	}
	for _, u := range seed.Users {
		s.users[u.ID] = u
	}
	for _, c := range seed.Companies {
		s.companies[c.ID] = c
	}
	for _, j := range seed.Jobs {
		s.jobs[j.ID] = j
	}
	for _, m := range seed.Memberships {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now()
			m.UpdatedAt = m.CreatedAt
		}
		s.memberships[pairKey{m.CompanyID, m.UserID}] = m
	}
	return s
}

// Memberships returns the membership repository view.
func (s *Store) Memberships() repository.MembershipRepository { return (*membershipRepo)(s) }

// JoinRequests returns the join request repository view.
func (s *Store) JoinRequests() repository.JoinRequestRepository { return (*joinRequestRepo)(s) }

// Applications returns the application repository view.
func (s *Store) Applications() repository.ApplicationRepository { return (*applicationRepo)(s) }

// History returns the application history repository view.
func (s *Store) History() repository.ApplicationHistoryRepository { return (*historyRepo)(s) }

// Companies returns the company/job repository view.
func (s *Store) Companies() repository.CompanyRepository { return (*companyRepo)(s) }

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

type membershipRepo Store

func (r *membershipRepo) Get(_ context.Context, companyID, userID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[pairKey{companyID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *membershipRepo) ListByCompany(_ context.Context, companyID string) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.Membership{}
	for key, m := range r.memberships {
		if key.a == companyID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].UserID < result[j].UserID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *membershipRepo) UpdateRole(_ context.Context, companyID, userID string, expected, role domain.MemberRole) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{companyID, userID}
	m, ok := r.memberships[key]
	if !ok || m.Role != expected {
		return nil, repository.ErrStale
	}
	m.Role = role
	m.UpdatedAt = r.now()
	r.memberships[key] = m
	return &m, nil
}

func (r *membershipRepo) Delete(_ context.Context, companyID, userID string, expected domain.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{companyID, userID}
	m, ok := r.memberships[key]
	if !ok || m.Role != expected {
		return repository.ErrStale
	}
	delete(r.memberships, key)
	return nil
}

type joinRequestRepo Store

func (r *joinRequestRepo) Create(_ context.Context, req *domain.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.joinRequests {
		if existing.ID == req.ID {
			return repository.ErrDuplicate
		}
		if existing.IsPending() && existing.CompanyID == req.CompanyID && existing.UserID == req.UserID {
			return repository.ErrDuplicate
		}
	}
	req.RequestedAt = r.now()
	r.joinRequests[req.ID] = *req
	return nil
}

func (r *joinRequestRepo) GetByID(_ context.Context, id string) (*domain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.joinRequests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *joinRequestRepo) FindPending(_ context.Context, companyID, userID string) (*domain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.joinRequests {
		if req.IsPending() && req.CompanyID == companyID && req.UserID == userID {
			return &req, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *joinRequestRepo) List(_ context.Context, filter repository.JoinRequestFilter) ([]domain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.JoinRequest{}
	for _, req := range r.joinRequests {
		if filter.CompanyID != nil && req.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		result = append(result, req)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.After(result[j].RequestedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *joinRequestRepo) Accept(_ context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, *domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.joinRequests[id]
	if !ok || !req.IsPending() {
		return nil, nil, repository.ErrStale
	}
	key := pairKey{req.CompanyID, req.UserID}
	if _, exists := r.memberships[key]; exists {
		return nil, nil, repository.ErrDuplicate
	}

	req.Status = domain.JoinRequestStatusAccepted
	req.ResolvedBy = &resolvedBy
	req.ResolvedAt = &at
	r.joinRequests[id] = req

	now := r.now()
	membership := domain.Membership{
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Role:      req.RoleTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.memberships[key] = membership
	return &req, &membership, nil
}

func (r *joinRequestRepo) Reject(_ context.Context, id, resolvedBy string, at time.Time) (*domain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.joinRequests[id]
	if !ok || !req.IsPending() {
		return nil, repository.ErrStale
	}
	req.Status = domain.JoinRequestStatusRejected
	req.ResolvedBy = &resolvedBy
	req.ResolvedAt = &at
	r.joinRequests[id] = req
	return &req, nil
}

type applicationRepo Store

func (r *applicationRepo) Create(_ context.Context, app *domain.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.applications {
		if existing.ID == app.ID || (existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID) {
			return repository.ErrDuplicate
		}
	}
	now := r.now()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.applications[app.ID] = *app
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id string) (*domain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &app, nil
}

func (r *applicationRepo) FindByJobAndApplicant(_ context.Context, jobID, applicantID string) (*domain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.applications {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return &app, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *applicationRepo) List(_ context.Context, filter repository.ApplicationFilter) ([]domain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.JobApplication{}
	for _, app := range r.applications {
		if filter.JobID != nil && app.JobID != *filter.JobID {
			continue
		}
		if filter.ApplicantID != nil && app.ApplicantID != *filter.ApplicantID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, app.Status) {
			continue
		}
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *applicationRepo) UpdateStatus(_ context.Context, id string, expected, status domain.ApplicationStatus) (*domain.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.applications[id]
	if !ok || app.Status != expected {
		return nil, repository.ErrStale
	}
	app.Status = status
	app.UpdatedAt = r.now()
	r.applications[id] = app
	return &app, nil
}

func (r *applicationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.applications, id)
	delete(r.history, id)
	return nil
}

type historyRepo Store

func (r *historyRepo) Create(_ context.Context, entry *domain.ApplicationHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.CreatedAt = r.now()
	r.history[entry.ApplicationID] = append(r.history[entry.ApplicationID], *entry)
	return nil
}

func (r *historyRepo) ListByApplication(_ context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ApplicationHistory{}, r.history[applicationID]...), nil
}

type companyRepo Store

func (r *companyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *companyRepo) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func containsStatus(statuses []domain.ApplicationStatus, status domain.ApplicationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
