package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

var membershipColumns = []string{"company_id", "user_id", "role", "created_at", "updated_at"}

func TestMembershipGet_NotFound(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewMembershipRepository(mock)

	mock.ExpectQuery(`FROM memberships WHERE company_id=\$1 AND user_id=\$2`).
		WithArgs("company-1", "ghost").
		WillReturnRows(pgxmock.NewRows(membershipColumns))

	_, err := repo.Get(context.Background(), "company-1", "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipUpdateRole_Success(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewMembershipRepository(mock)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE memberships SET role=\$1`).
		WithArgs(domain.MemberRoleRecruiter, "company-1", "user-1", domain.MemberRoleEmployee).
		WillReturnRows(pgxmock.NewRows(membershipColumns).
			AddRow("company-1", "user-1", domain.MemberRoleRecruiter, now, now))

	m, err := repo.UpdateRole(context.Background(), "company-1", "user-1", domain.MemberRoleEmployee, domain.MemberRoleRecruiter)

	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleRecruiter, m.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipUpdateRole_ChangedUnderneath(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewMembershipRepository(mock)

	mock.ExpectQuery(`UPDATE memberships SET role=\$1`).
		WithArgs(domain.MemberRoleRecruiter, "company-1", "user-1", domain.MemberRoleEmployee).
		WillReturnRows(pgxmock.NewRows(membershipColumns))

	_, err := repo.UpdateRole(context.Background(), "company-1", "user-1", domain.MemberRoleEmployee, domain.MemberRoleRecruiter)

	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipDelete(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewMembershipRepository(mock)

	mock.ExpectExec(`DELETE FROM memberships`).
		WithArgs("company-1", "user-1", domain.MemberRoleEmployee).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM memberships`).
		WithArgs("company-1", "user-1", domain.MemberRoleEmployee).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "company-1", "user-1", domain.MemberRoleEmployee))
	assert.ErrorIs(t, repo.Delete(context.Background(), "company-1", "user-1", domain.MemberRoleEmployee), ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipListByCompany(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewMembershipRepository(mock)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM memberships WHERE company_id=\$1 ORDER BY created_at ASC`).
		WithArgs("company-1").
		WillReturnRows(pgxmock.NewRows(membershipColumns).
			AddRow("company-1", "admin-1", domain.MemberRoleAdmin, now, now).
			AddRow("company-1", "user-1", domain.MemberRoleEmployee, now, now))

	members, err := repo.ListByCompany(context.Background(), "company-1")

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, domain.MemberRoleAdmin, members[0].Role)
	assert.Equal(t, "user-1", members[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
