package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/store"
	"libraryhub/internal/store/storetest"
)

func newLoanService(t *testing.T) (*loanService, *store.Store) {
	t.Helper()
	st := storetest.Seeded(t)
	return NewLoanService(st, nil).(*loanService), st
}

func loadBook(t *testing.T, st *store.Store, id uint) *model.Book {
	t.Helper()
	book, err := st.Repos().Books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return book
}

func loadLoan(t *testing.T, st *store.Store, id uint) *model.Loan {
	t.Helper()
	loan, err := st.Repos().Loans.FindByID(context.Background(), id)
	require.NoError(t, err)
	return loan
}

func TestLoanService_Borrowing1984(t *testing.T) {
	svc, st := newLoanService(t)

	loan, err := svc.CreateLoan(asJohn(), book1984, "")
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.Equal(t, johnID, loan.UserID)
	assert.Equal(t, "1984", loan.Book.Title)

	book := loadBook(t, st, book1984)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusBorrowed, book.Status)

	for _, ctx := range []context.Context{asJohn(), asJane(), asAdmin()} {
		_, err = svc.CreateLoan(ctx, book1984, "")
		assert.ErrorIs(t, err, errors.ErrNoCopiesAvailable)
	}
}

func TestLoanService_BorrowingWithNoCopiesLeavesStateUnchanged(t *testing.T) {
	svc, st := newLoanService(t)
	ctx := context.Background()
	before, err := st.Repos().Loans.List(ctx, loanFilterAll())
	require.NoError(t, err)

	_, err = svc.CreateLoan(asJane(), bookMockingbird, "")
	assert.ErrorIs(t, err, errors.ErrNoCopiesAvailable)

	book := loadBook(t, st, bookMockingbird)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusReserved, book.Status)
	after, err := st.Repos().Loans.List(ctx, loanFilterAll())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestLoanService_CreateLoanErrors(t *testing.T) {
	svc, _ := newLoanService(t)

	_, err := svc.CreateLoan(context.Background(), bookGatsby, "")
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)

	_, err = svc.CreateLoan(asJohn(), 999, "")
	assert.ErrorIs(t, err, errors.ErrBookNotFound)
}

func TestLoanService_LoanLimitComesFromSettings(t *testing.T) {
	svc, st := newLoanService(t)
	settings := NewSettingsService(st)
	_, err := settings.UpdateSettings(asAdmin(), SettingsUpdate{MaxBooksPerUser: ptr(2), DefaultLoanDuration: ptr(14)})
	require.NoError(t, err)

	// John already holds the seeded loan of 1984.
	loan, err := svc.CreateLoan(asJohn(), bookGatsby, "")
	require.NoError(t, err)
	assert.Equal(t, loan.BorrowDate.AddDate(0, 0, 14).Unix(), loan.DueDate.Unix())

	_, err = svc.CreateLoan(asJohn(), bookPride, "")
	assert.ErrorIs(t, err, errors.ErrLoanLimitReached)
	assert.Equal(t, 4, loadBook(t, st, bookPride).AvailableQuantity)

	_, err = svc.CreateLoan(asAdmin(), bookPride, "")
	require.NoError(t, err)
	_, err = svc.CreateLoan(asAdmin(), bookPride, "")
	require.NoError(t, err)
	_, err = svc.CreateLoan(asAdmin(), bookSolitude, "")
	assert.NoError(t, err, "administrators are not capped")
}

func TestLoanService_ReturnLoan(t *testing.T) {
	svc, st := newLoanService(t)

	loan, err := svc.CreateLoan(asJane(), bookGatsby, "")
	require.NoError(t, err)
	assert.Equal(t, 4, loadBook(t, st, bookGatsby).AvailableQuantity)

	returned, err := svc.ReturnLoan(asJane(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, returned.FineAmount.IsZero())

	book := loadBook(t, st, bookGatsby)
	assert.Equal(t, 5, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusAvailable, book.Status)

	_, err = svc.ReturnLoan(asJane(), loan.ID)
	assert.ErrorIs(t, err, errors.ErrLoanAlreadyReturned)
	assert.Equal(t, 5, loadBook(t, st, bookGatsby).AvailableQuantity)

	_, err = svc.ReturnLoan(asJane(), 999)
	assert.ErrorIs(t, err, errors.ErrLoanNotFound)
}

func TestLoanService_ReturnOthersLoanIsForbidden(t *testing.T) {
	svc, st := newLoanService(t)

	_, err := svc.ReturnLoan(asJane(), seedLoan1984)
	assert.ErrorIs(t, err, errors.ErrNotOwner)

	loan := loadLoan(t, st, seedLoan1984)
	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, 1, loadBook(t, st, book1984).AvailableQuantity)

	_, err = svc.ReturnLoan(asAdmin(), seedLoan1984)
	assert.NoError(t, err, "administrators may return any loan")
}

func TestLoanService_ReturnChargesCappedLateFee(t *testing.T) {
	svc, st := newLoanService(t)
	_, err := NewSettingsService(st).UpdateSettings(asAdmin(), SettingsUpdate{MaxLateDays: ptr(10)})
	require.NoError(t, err)

	// The seeded loan was due on 2024-02-15.
	svc.now = func() time.Time { return time.Date(2024, 2, 19, 9, 0, 0, 0, time.UTC) }
	returned, err := svc.ReturnLoan(asJohn(), seedLoan1984)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.00").Equal(returned.FineAmount), returned.FineAmount.String())

	book := loadBook(t, st, book1984)
	assert.Equal(t, 2, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusAvailable, book.Status)

	svc2, st2 := newLoanService(t)
	_, err = NewSettingsService(st2).UpdateSettings(asAdmin(), SettingsUpdate{MaxLateDays: ptr(10)})
	require.NoError(t, err)
	svc2.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	returned, err = svc2.ReturnLoan(asJohn(), seedLoan1984)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(returned.FineAmount), returned.FineAmount.String())
}

func TestLoanService_AvailabilityInvariantOverSequences(t *testing.T) {
	svc, st := newLoanService(t)
	var open []uint

	steps := []bool{true, true, true, false, true, true, true, false, false, true, false, false, false}
	for i, borrow := range steps {
		if borrow {
			loan, err := svc.CreateLoan(asAdmin(), bookAnimalFarm, "")
			if err != nil {
				assert.ErrorIs(t, err, errors.ErrNoCopiesAvailable, "step %d", i)
			} else {
				open = append(open, loan.ID)
			}
		} else if len(open) > 0 {
			_, err := svc.ReturnLoan(asAdmin(), open[0])
			require.NoError(t, err)
			open = open[1:]
		}

		book := loadBook(t, st, bookAnimalFarm)
		require.NoError(t, book.ValidateQuantities(), "step %d", i)
		assert.Equal(t, book.Quantity-len(open), book.AvailableQuantity, "step %d", i)
	}
}

func TestLoanService_ListLoans(t *testing.T) {
	svc, _ := newLoanService(t)

	_, err := svc.CreateLoan(asJane(), bookGatsby, "")
	require.NoError(t, err)

	all, err := svc.ListLoans(asAdmin(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListLoans(asJane(), "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, janeID, mine[0].UserID)

	overdue, err := svc.ListLoans(asAdmin(), model.LoanStatusOverdue)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, seedLoan1984, overdue[0].ID)
	assert.Equal(t, model.LoanStatusOverdue, overdue[0].Status)
	assert.Positive(t, overdue[0].DaysOverdue)

	active, err := svc.ListLoans(asAdmin(), model.LoanStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, janeID, active[0].UserID)

	_, err = svc.ListLoans(asAdmin(), "lost")
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	_, err = svc.GetLoan(asJane(), seedLoan1984)
	assert.ErrorIs(t, err, errors.ErrNotOwner)
}

func TestLoanService_ReturnAfterBookDeleted(t *testing.T) {
	svc, st := newLoanService(t)
	books := NewBookService(st, nil)

	require.NoError(t, books.DeleteBook(asAdmin(), book1984))

	returned, err := svc.ReturnLoan(asJohn(), seedLoan1984)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.Book, "loans keep their deleted book")
	assert.Equal(t, "1984", returned.Book.Title)
}
