package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

// LibrarySettings is the loan policy of the library.
type LibrarySettings struct {
	ID                  uint            `json:"-" gorm:"primaryKey"`
	MaxBooksPerUser     int             `json:"max_books_per_user" gorm:"not null"`
	DefaultLoanDuration int             `json:"default_loan_duration" gorm:"not null"` // days
	LateFeePerDay       decimal.Decimal `json:"late_fee_per_day" gorm:"type:decimal(10,2);not null"`
	MaxLateDays         int             `json:"max_late_days" gorm:"not null"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// DefaultSettings returns the policy used when nothing has been configured.
func DefaultSettings() LibrarySettings {
	return LibrarySettings{
		ID:                  SettingsID,
		MaxBooksPerUser:     5,
		DefaultLoanDuration: 30,
		LateFeePerDay:       decimal.RequireFromString("0.50"),
		MaxLateDays:         90,
	}
}

// LoanPeriod returns the duration of a new loan.
func (s *LibrarySettings) LoanPeriod() time.Duration {
	return time.Duration(s.DefaultLoanDuration) * 24 * time.Hour
}

// FineFor computes the late fee owed for a loan returned at now.
// Charged days are capped at MaxLateDays.
func (s *LibrarySettings) FineFor(loan *Loan, now time.Time) decimal.Decimal {
	days := loan.OverdueDays(now)
	if days > s.MaxLateDays {
		days = s.MaxLateDays
	}
	if days <= 0 {
		return decimal.Zero
	}
	return s.LateFeePerDay.Mul(decimal.NewFromInt(int64(days)))
}
