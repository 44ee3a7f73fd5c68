package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus represents the status of a loan.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	// LoanStatusOverdue is computed from the due date and never stored.
	LoanStatusOverdue LoanStatus = "overdue"
)

// Loan records one copy of a book lent to a user.
type Loan struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	BookID     uint            `json:"book_id" gorm:"not null;index"`
	UserID     uint            `json:"user_id" gorm:"not null;index"`
	BorrowDate time.Time       `json:"borrow_date" gorm:"not null;index"`
	DueDate    time.Time       `json:"due_date" gorm:"not null;index"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Status     LoanStatus      `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Notes      string          `json:"notes,omitempty" gorm:"type:text"`
	FineAmount decimal.Decimal `json:"fine_amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// DaysOverdue is filled on read and never persisted.
	DaysOverdue int `json:"days_overdue" gorm:"-"`

	// Relations
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IsOverdue reports whether an active loan is past its due date at now.
// Due dates are compared by calendar day.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && day(now).After(day(l.DueDate))
}

// EffectiveStatus is the status as seen by readers: active loans past their
// due date read as overdue.
func (l *Loan) EffectiveStatus(now time.Time) LoanStatus {
	if l.IsOverdue(now) {
		return LoanStatusOverdue
	}
	return l.Status
}

// OverdueDays counts whole days past the due date, zero when not overdue.
func (l *Loan) OverdueDays(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return int(day(now).Sub(day(l.DueDate)).Hours() / 24)
}

// Present rewrites the read-only view fields for now. The result must not be
// saved back: Status may hold the computed overdue value.
func (l *Loan) Present(now time.Time) {
	l.DaysOverdue = l.OverdueDays(now)
	l.Status = l.EffectiveStatus(now)
}

// OverdueCutoff returns the instant before which an active loan's due date
// makes it overdue at now.
func OverdueCutoff(now time.Time) time.Time {
	return day(now)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
