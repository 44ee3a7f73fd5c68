package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/errors"
	"libraryhub/internal/store/storetest"
)

func TestDashboardService_Admin(t *testing.T) {
	svc := NewDashboardService(storetest.Seeded(t))

	stats, err := svc.Stats(asAdmin())
	require.NoError(t, err)
	require.NotNil(t, stats.Admin)
	assert.Nil(t, stats.User)

	a := stats.Admin
	assert.Equal(t, int64(6), a.TotalBooks)
	assert.Equal(t, int64(16), a.AvailableBooks)
	assert.Equal(t, int64(0), a.BorrowedBooks, "1984 still has a copy on the shelf")
	assert.Equal(t, int64(3), a.TotalUsers)
	assert.Equal(t, int64(1), a.ActiveLoans)
	assert.Equal(t, int64(1), a.OverdueLoans, "the seeded loan was due in 2024")

	require.Len(t, a.TopCategories, 5)
	assert.Equal(t, "Classic Literature", a.TopCategories[0].Name)
	assert.Equal(t, int64(1), a.TopCategories[0].BookCount)
	assert.Len(t, a.RecentBooks, 5)
}

func TestDashboardService_User(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewDashboardService(st)

	_, err := NewLoanService(st, nil).CreateLoan(asJohn(), bookGatsby, "")
	require.NoError(t, err)

	stats, err := svc.Stats(asJohn())
	require.NoError(t, err)
	require.NotNil(t, stats.User)
	assert.Nil(t, stats.Admin)
	assert.Equal(t, int64(2), stats.User.ActiveLoans)
	assert.Equal(t, int64(1), stats.User.OverdueLoans)
	assert.Equal(t, int64(2), stats.User.TotalBorrowed)
	assert.Equal(t, int64(5), stats.User.BooksAvailable)

	stats, err = svc.Stats(asJane())
	require.NoError(t, err)
	assert.Zero(t, stats.User.ActiveLoans)

	_, err = svc.Stats(context.Background())
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)
}
