package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/cache"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// LoanService runs the borrowing workflow.
type LoanService interface {
	CreateLoan(ctx context.Context, bookID uint, notes string) (*model.Loan, error)
	ReturnLoan(ctx context.Context, loanID uint) (*model.Loan, error)
	GetLoan(ctx context.Context, loanID uint) (*model.Loan, error)
	// ListLoans shows administrators every loan and users their own. Status
	// filters on the computed status.
	ListLoans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error)
}

type loanService struct {
	store  *store.Store
	books  bookCache
	logger *slog.Logger
	now    func() time.Time
}

// NewLoanService creates a new loan service. The loan cap and duration come
// from the library settings.
func NewLoanService(st *store.Store, c *cache.Client) LoanService {
	return &loanService{
		store:  st,
		books:  bookCache{client: c},
		logger: moduleLogger("loans"),
		now:    time.Now,
	}
}

func (s *loanService) CreateLoan(ctx context.Context, bookID uint, notes string) (*model.Loan, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var loan *model.Loan
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		book, err := repos.Books.FindByID(ctx, bookID)
		if err != nil {
			return translate(err, "find book", errors.ErrBookNotFound)
		}
		if !book.IsAvailable() {
			return errors.ErrNoCopiesAvailable
		}
		if !p.IsAdmin() {
			active, err := repos.Loans.CountActiveByUser(ctx, p.UserID)
			if err != nil {
				return fmt.Errorf("count loans: %w", err)
			}
			if active >= int64(settings.MaxBooksPerUser) {
				return errors.ErrLoanLimitReached
			}
		}

		if err := book.CheckOut(); err != nil {
			return err
		}
		if err := repos.Books.Update(ctx, book); err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		created := &model.Loan{
			BookID:     book.ID,
			UserID:     p.UserID,
			BorrowDate: now,
			DueDate:    now.Add(settings.LoanPeriod()),
			Status:     model.LoanStatusActive,
			Notes:      notes,
		}
		if err := repos.Loans.Create(ctx, created); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		loan, err = repos.Loans.FindByID(ctx, created.ID)
		return translate(err, "reload loan", errors.ErrLoanNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.books.invalidate(ctx, bookID)
	loan.Present(now)
	s.logger.Info("book borrowed", "operation", "create_loan", "outcome", "success",
		"loan_id", loan.ID, "book_id", bookID, "user_id", p.UserID)
	return loan, nil
}

// ReturnLoan closes a loan, charges the late fee and puts the copy back on
// the shelf.
func (s *loanService) ReturnLoan(ctx context.Context, loanID uint) (*model.Loan, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var loan *model.Loan
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		found, err := repos.Loans.FindByID(ctx, loanID)
		if err != nil {
			return translate(err, "find loan", errors.ErrLoanNotFound)
		}
		if _, err := access.RequireOwnerOrAdmin(ctx, found.UserID); err != nil {
			return err
		}
		if found.Status == model.LoanStatusReturned {
			return errors.ErrLoanAlreadyReturned
		}
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		found.FineAmount = settings.FineFor(found, now)
		found.ReturnDate = &now
		found.Status = model.LoanStatusReturned
		if err := repos.Loans.Update(ctx, found); err != nil {
			return fmt.Errorf("update loan: %w", err)
		}

		// A deleted book no longer circulates.
		book, err := repos.Books.FindByID(ctx, found.BookID)
		switch {
		case isNotFound(err):
		case err != nil:
			return fmt.Errorf("find book: %w", err)
		default:
			book.CheckIn()
			if err := repos.Books.Update(ctx, book); err != nil {
				return fmt.Errorf("update book: %w", err)
			}
		}

		loan, err = repos.Loans.FindByID(ctx, loanID)
		return translate(err, "reload loan", errors.ErrLoanNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.books.invalidate(ctx, loan.BookID)
	loan.Present(now)
	s.logger.Info("book returned", "operation", "return_loan", "outcome", "success",
		"loan_id", loan.ID, "book_id", loan.BookID, "user_id", loan.UserID, "by", p.UserID,
		"fine", loan.FineAmount.StringFixed(2))
	return loan, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID uint) (*model.Loan, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	loan, err := s.store.Repos().Loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, translate(err, "get loan", errors.ErrLoanNotFound)
	}
	if _, err := access.RequireOwnerOrAdmin(ctx, loan.UserID); err != nil {
		return nil, err
	}
	loan.Present(s.now())
	return loan, nil
}

func (s *loanService) ListLoans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	switch status {
	case "", model.LoanStatusActive, model.LoanStatusReturned, model.LoanStatusOverdue:
	default:
		return nil, errors.ErrInvalidStatus
	}
	now := s.now()
	loans, err := s.store.Repos().Loans.List(ctx, repository.LoanFilter{
		UserID: access.ScopeUserID(p),
		Status: status,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	for i := range loans {
		loans[i].Present(now)
	}
	return loans, nil
}
