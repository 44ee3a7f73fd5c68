package service

import (
	"context"
	"fmt"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

const dashboardListSize = 5

// AdminStats is the administrator dashboard.
type AdminStats struct {
	TotalBooks     int64                      `json:"total_books"`
	AvailableBooks int64                      `json:"available_books"`
	BorrowedBooks  int64                      `json:"borrowed_books"`
	TotalUsers     int64                      `json:"total_users"`
	ActiveLoans    int64                      `json:"active_loans"`
	OverdueLoans   int64                      `json:"overdue_loans"`
	TopCategories  []repository.CategoryCount `json:"top_categories"`
	RecentBooks    []model.Book               `json:"recent_books"`
}

// UserStats is the dashboard of a regular user.
type UserStats struct {
	ActiveLoans    int64 `json:"active_loans"`
	OverdueLoans   int64 `json:"overdue_loans"`
	TotalBorrowed  int64 `json:"total_borrowed"`
	BooksAvailable int64 `json:"books_available"`
}

// DashboardStats holds exactly one of the two views.
type DashboardStats struct {
	Admin *AdminStats `json:"admin,omitempty"`
	User  *UserStats  `json:"user,omitempty"`
}

// DashboardService computes the dashboard counters.
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	store *store.Store
	now   func() time.Time
}

func NewDashboardService(st *store.Store) DashboardService {
	return &dashboardService{store: st, now: time.Now}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	now := s.now()

	if !p.IsAdmin() {
		var stats UserStats
		steps := []struct {
			name string
			fn   func() (int64, error)
			dst  *int64
		}{
			{"active loans", func() (int64, error) { return repos.Loans.CountActive(ctx, p.UserID) }, &stats.ActiveLoans},
			{"overdue loans", func() (int64, error) { return repos.Loans.CountOverdue(ctx, p.UserID, now) }, &stats.OverdueLoans},
			{"total borrowed", func() (int64, error) { return repos.Loans.CountByUser(ctx, p.UserID) }, &stats.TotalBorrowed},
			{"available books", func() (int64, error) { return repos.Books.CountByStatus(ctx, model.BookStatusAvailable) }, &stats.BooksAvailable},
		}
		for _, step := range steps {
			if *step.dst, err = step.fn(); err != nil {
				return nil, fmt.Errorf("count %s: %w", step.name, err)
			}
		}
		return &DashboardStats{User: &stats}, nil
	}

	var stats AdminStats
	steps := []struct {
		name string
		fn   func() (int64, error)
		dst  *int64
	}{
		{"books", func() (int64, error) { return repos.Books.Count(ctx) }, &stats.TotalBooks},
		{"available copies", func() (int64, error) { return repos.Books.SumAvailable(ctx) }, &stats.AvailableBooks},
		{"borrowed books", func() (int64, error) { return repos.Books.CountByStatus(ctx, model.BookStatusBorrowed) }, &stats.BorrowedBooks},
		{"users", func() (int64, error) { return repos.Users.Count(ctx) }, &stats.TotalUsers},
		{"active loans", func() (int64, error) { return repos.Loans.CountActive(ctx, 0) }, &stats.ActiveLoans},
		{"overdue loans", func() (int64, error) { return repos.Loans.CountOverdue(ctx, 0, now) }, &stats.OverdueLoans},
	}
	for _, step := range steps {
		if *step.dst, err = step.fn(); err != nil {
			return nil, fmt.Errorf("count %s: %w", step.name, err)
		}
	}
	if stats.TopCategories, err = repos.Categories.Top(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	if stats.RecentBooks, err = repos.Books.Recent(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("recent books: %w", err)
	}
	return &DashboardStats{Admin: &stats}, nil
}
