package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libraryhub/internal/db"
	"libraryhub/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

func TestConnectionLogRepository_TrimsOldest(t *testing.T) {
	gormDB := newTestDB(t)
	repo := &connectionLogRepository{db: gormDB, limit: 3}
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, &model.ConnectionLog{
			UserEmail: fmt.Sprintf("user%d@example.com", i),
			UserName:  "Unknown",
			Type:      model.ConnectionFailedLogin,
			Timestamp: time.Now(),
			IPAddress: model.PlaceholderAddress,
		}))
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "user5@example.com", entries[0].UserEmail, "newest first")
	assert.Equal(t, "user3@example.com", entries[2].UserEmail)
}

func TestBookRepository_SearchAndFilters(t *testing.T) {
	gormDB := newTestDB(t)
	repos := New(gormDB)
	ctx := context.Background()

	orwell := &model.Author{FirstName: "George", LastName: "Orwell"}
	austen := &model.Author{FirstName: "Jane", LastName: "Austen"}
	require.NoError(t, repos.Authors.Create(ctx, orwell))
	require.NoError(t, repos.Authors.Create(ctx, austen))
	dystopia := &model.Category{Name: "Dystopian Fiction", Color: "#EF4444"}
	require.NoError(t, repos.Categories.Create(ctx, dystopia))

	books := []*model.Book{
		{Title: "1984", ISBN: "978-0-452-28423-4", Language: "en", Quantity: 2, AvailableQuantity: 1,
			Status: model.BookStatusAvailable, Authors: []model.Author{*orwell}, Categories: []model.Category{*dystopia}},
		{Title: "Animal Farm", ISBN: "978-0-452-28424-1", Language: "en", Quantity: 1, AvailableQuantity: 0,
			Status: model.BookStatusBorrowed, Authors: []model.Author{*orwell}},
		{Title: "Emma", ISBN: "978-0-14-143958-7", Language: "fr", Quantity: 1, AvailableQuantity: 1,
			Status: model.BookStatusAvailable, Authors: []model.Author{*austen}},
	}
	for _, b := range books {
		require.NoError(t, repos.Books.Create(ctx, b))
	}

	tests := []struct {
		name   string
		filter BookFilter
		want   []string
	}{
		{"no filter is ordered by title", BookFilter{}, []string{"1984", "Animal Farm", "Emma"}},
		{"author last name", BookFilter{Search: "ORWELL"}, []string{"1984", "Animal Farm"}},
		{"author first name", BookFilter{Search: "jane"}, []string{"Emma"}},
		{"author full name", BookFilter{Search: "George Orwell"}, []string{"1984", "Animal Farm"}},
		{"category name", BookFilter{Search: "dystopian"}, []string{"1984"}},
		{"isbn fragment", BookFilter{Search: "28424"}, []string{"Animal Farm"}},
		{"status", BookFilter{Status: model.BookStatusBorrowed}, []string{"Animal Farm"}},
		{"language", BookFilter{Language: "fr"}, []string{"Emma"}},
		{"author id", BookFilter{AuthorID: austen.ID}, []string{"Emma"}},
		{"category id", BookFilter{CategoryID: dystopia.ID}, []string{"1984"}},
		{"nothing matches", BookFilter{Search: "tolkien"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repos.Books.List(ctx, tt.filter)
			require.NoError(t, err)
			titles := []string{}
			for _, b := range got {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.want, titles)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}

	sum, err := repos.Books.SumAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum)

	top, err := repos.Categories.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Dystopian Fiction", top[0].Name)
	assert.Equal(t, int64(1), top[0].BookCount)
}

func TestBookRepository_ReplaceLinks(t *testing.T) {
	gormDB := newTestDB(t)
	repos := New(gormDB)
	ctx := context.Background()

	first := &model.Author{FirstName: "George", LastName: "Orwell"}
	second := &model.Author{FirstName: "Aldous", LastName: "Huxley"}
	require.NoError(t, repos.Authors.Create(ctx, first))
	require.NoError(t, repos.Authors.Create(ctx, second))

	book := &model.Book{Title: "Anthology", ISBN: "978-1-00-000000-1", Quantity: 1, AvailableQuantity: 1,
		Authors: []model.Author{*first}}
	require.NoError(t, repos.Books.Create(ctx, book))

	require.NoError(t, repos.Books.ReplaceAuthors(ctx, book, []model.Author{*second}))

	got, err := repos.Books.FindByID(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Huxley", got.Authors[0].LastName)

	require.NoError(t, repos.Authors.Delete(ctx, second.ID))
	got, err = repos.Books.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Authors, "deleting an author only removes the link")
}

func TestLoanRepository_StatusFilter(t *testing.T) {
	gormDB := newTestDB(t)
	repos := New(gormDB)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	loans := []*model.Loan{
		{BookID: 1, UserID: 2, BorrowDate: now.AddDate(0, 0, -40), DueDate: now.AddDate(0, 0, -10), Status: model.LoanStatusActive},
		{BookID: 2, UserID: 2, BorrowDate: now.AddDate(0, 0, -1), DueDate: now.AddDate(0, 0, 29), Status: model.LoanStatusActive},
		{BookID: 3, UserID: 3, BorrowDate: now.AddDate(0, 0, -5), DueDate: now.AddDate(0, 0, 25), Status: model.LoanStatusReturned},
		{BookID: 4, UserID: 3, BorrowDate: now.AddDate(0, 0, -30), DueDate: now.Add(-2 * time.Hour), Status: model.LoanStatusActive},
	}
	for _, l := range loans {
		require.NoError(t, repos.Loans.Create(ctx, l))
	}

	count := func(f LoanFilter) int {
		f.Now = now
		got, err := repos.Loans.List(ctx, f)
		require.NoError(t, err)
		return len(got)
	}
	assert.Equal(t, 4, count(LoanFilter{}))
	assert.Equal(t, 1, count(LoanFilter{Status: model.LoanStatusOverdue}))
	assert.Equal(t, 2, count(LoanFilter{Status: model.LoanStatusActive}), "due earlier today is not overdue yet")
	assert.Equal(t, 1, count(LoanFilter{Status: model.LoanStatusReturned}))
	assert.Equal(t, 2, count(LoanFilter{UserID: 2}))

	overdue, err := repos.Loans.CountOverdue(ctx, 0, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), overdue)

	active, err := repos.Loans.CountActiveByUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)
}

func TestSettingsRepository_DefaultsOnFirstRead(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()

	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, settings.MaxLateDays)

	settings.MaxBooksPerUser = 2
	require.NoError(t, repos.Settings.Save(ctx, settings))

	again, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, again.MaxBooksPerUser)
	assert.True(t, again.LateFeePerDay.Equal(model.DefaultSettings().LateFeePerDay))
}

func TestSoftDeletedRowsCanBeRestored(t *testing.T) {
	repos := New(newTestDB(t))
	ctx := context.Background()

	user := &model.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", PasswordHash: "x", Role: model.RoleUser, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, user))
	require.NoError(t, repos.Users.Delete(ctx, user.ID))

	_, err := repos.Users.FindByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	deleted, err := repos.Users.FindByEmailWithDeleted(ctx, user.Email)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)

	deleted.FirstName = "Augusta"
	require.NoError(t, repos.Users.Restore(ctx, deleted))
	live, err := repos.Users.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, live.ID)
	assert.Equal(t, "Augusta", live.FirstName)

	book := &model.Book{Title: "Emma", ISBN: "978-0-14-143958-7", Quantity: 1, AvailableQuantity: 1}
	require.NoError(t, repos.Books.Create(ctx, book))
	require.NoError(t, repos.Books.Delete(ctx, book.ID))

	gone, err := repos.Books.FindByISBNWithDeleted(ctx, book.ISBN)
	require.NoError(t, err)
	gone.Quantity, gone.AvailableQuantity = 3, 3
	require.NoError(t, repos.Books.Restore(ctx, gone))

	back, err := repos.Books.FindByISBN(ctx, book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, book.ID, back.ID)
	assert.Equal(t, 3, back.AvailableQuantity)
}
