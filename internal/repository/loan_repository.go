package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// LoanFilter narrows a loan listing.
type LoanFilter struct {
	UserID uint
	BookID uint
	// Status filters on the effective status; LoanStatusOverdue and
	// LoanStatusActive are told apart using Now.
	Status model.LoanStatus
	Now    time.Time
}

// LoanRepository defines persistence operations for loans.
type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	Update(ctx context.Context, loan *model.Loan) error
	FindByID(ctx context.Context, id uint) (*model.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]model.Loan, error)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountActive(ctx context.Context, userID uint) (int64, error)
	CountOverdue(ctx context.Context, userID uint, now time.Time) (int64, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	return r.db.WithContext(ctx).Omit("Book", "User").Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *model.Loan) error {
	return r.db.WithContext(ctx).Omit("Book", "User").Save(loan).Error
}

// withRelations loads book and borrower even when they were deleted since.
func (r *loanRepository) withRelations(ctx context.Context) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return r.db.WithContext(ctx).
		Preload("Book", unscoped).
		Preload("Book.Authors").
		Preload("User", unscoped)
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*model.Loan, error) {
	var loan model.Loan
	if err := r.withRelations(ctx).First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter LoanFilter) ([]model.Loan, error) {
	q := r.withRelations(ctx).Order("borrow_date DESC, id DESC")
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.BookID != 0 {
		q = q.Where("book_id = ?", filter.BookID)
	}
	cutoff := model.OverdueCutoff(filter.Now)
	switch filter.Status {
	case "":
	case model.LoanStatusOverdue:
		q = q.Where("status = ? AND due_date < ?", model.LoanStatusActive, cutoff)
	case model.LoanStatusActive:
		q = q.Where("status = ? AND due_date >= ?", model.LoanStatusActive, cutoff)
	default:
		q = q.Where("status = ?", filter.Status)
	}

	var loans []model.Loan
	if err := q.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// CountActiveByUser counts the loans a user has not returned yet, overdue
// ones included.
func (r *loanRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("user_id = ? AND status = ?", userID, model.LoanStatusActive).
		Count(&n).Error
	return n, err
}

// CountByUser counts every loan a user ever made.
func (r *loanRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Loan{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// CountActive counts unreturned loans, restricted to userID when non-zero.
func (r *loanRepository) CountActive(ctx context.Context, userID uint) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Loan{}).Where("status = ?", model.LoanStatusActive)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Count(&n).Error
	return n, err
}

// CountOverdue counts loans overdue at now, restricted to userID when non-zero.
func (r *loanRepository) CountOverdue(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("status = ? AND due_date < ?", model.LoanStatusActive, model.OverdueCutoff(now))
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Count(&n).Error
	return n, err
}
