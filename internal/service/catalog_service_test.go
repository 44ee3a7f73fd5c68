package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/auth"
	"libraryhub/internal/errors"
	"libraryhub/internal/repository"
	"libraryhub/internal/store/storetest"
)

func TestAuthorService(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewAuthorService(st, nil)
	books := NewBookService(st, nil)

	authors, err := svc.ListAuthors(asJohn(), "")
	require.NoError(t, err)
	assert.Len(t, authors, 5)

	found, err := svc.ListAuthors(asJohn(), "ORWELL")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = svc.CreateAuthor(asJohn(), AuthorInput{FirstName: ptr("Aldous"), LastName: ptr("Huxley")})
	assert.ErrorIs(t, err, errors.ErrForbidden)

	huxley, err := svc.CreateAuthor(asAdmin(), AuthorInput{FirstName: ptr("Aldous"), LastName: ptr("Huxley")})
	require.NoError(t, err)
	assert.NotZero(t, huxley.ID)

	updated, err := svc.UpdateAuthor(asAdmin(), huxley.ID, AuthorInput{Nationality: ptr("British")})
	require.NoError(t, err)
	assert.Equal(t, "British", updated.Nationality)
	assert.Equal(t, "Huxley", updated.LastName)

	// Orwell wrote two seeded books; deleting him keeps the books.
	require.NoError(t, svc.DeleteAuthor(asAdmin(), 2))
	book, err := books.GetBook(asJohn(), book1984)
	require.NoError(t, err)
	assert.Empty(t, book.Authors)

	_, err = svc.GetAuthor(asJohn(), 2)
	assert.ErrorIs(t, err, errors.ErrAuthorNotFound)
	assert.ErrorIs(t, svc.DeleteAuthor(asAdmin(), 2), errors.ErrAuthorNotFound)
}

func TestCategoryService(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewCategoryService(st, nil)

	categories, err := svc.ListCategories(asJane())
	require.NoError(t, err)
	assert.Len(t, categories, 6)

	created, err := svc.CreateCategory(asAdmin(), CategoryInput{Name: ptr("Science Fiction")})
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", created.Color)

	_, err = svc.CreateCategory(asAdmin(), CategoryInput{Name: ptr("romance")})
	assert.ErrorIs(t, err, errors.ErrCategoryTaken)

	_, err = svc.UpdateCategory(asAdmin(), created.ID, CategoryInput{Name: ptr("Political Satire")})
	assert.ErrorIs(t, err, errors.ErrCategoryTaken)

	renamed, err := svc.UpdateCategory(asAdmin(), created.ID, CategoryInput{Name: ptr("Sci-Fi"), Color: ptr("#000000")})
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi", renamed.Name)
	assert.Equal(t, "#000000", renamed.Color)

	require.NoError(t, svc.DeleteCategory(asAdmin(), 2))
	page, err := NewBookService(st, nil).ListBooks(asJane(), repository.BookFilter{Search: "dystopian"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestPublisherService(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewPublisherService(st, nil)

	publishers, err := svc.ListPublishers(asJohn())
	require.NoError(t, err)
	assert.Len(t, publishers, 3)

	updated, err := svc.UpdatePublisher(asAdmin(), 1, PublisherInput{Address: ptr("5 rue Gaston-Gallimard, Paris")})
	require.NoError(t, err)
	assert.Equal(t, "Gallimard", updated.Name)

	require.NoError(t, svc.DeletePublisher(asAdmin(), 1))
	book, err := st.Repos().Books.FindByID(context.Background(), bookSolitude)
	require.NoError(t, err)
	assert.Nil(t, book.PublisherID)

	_, err = svc.GetPublisher(asJohn(), 1)
	assert.ErrorIs(t, err, errors.ErrPublisherNotFound)
}

func TestConnectionLogService(t *testing.T) {
	authSvc, st := newAuthService(t, auth.NewMemorySessionStore())
	svc := NewConnectionLogService(st)

	_, err := authSvc.Login(context.Background(), "john.doe@email.com", "nope", "")
	require.Error(t, err)
	_, err = authSvc.Login(context.Background(), "john.doe@email.com", "password", "")
	require.NoError(t, err)

	_, err = svc.ListConnectionLogs(asJohn(), 0)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	entries, err := svc.ListConnectionLogs(asAdmin(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "login", string(entries[0].Type))
	assert.Equal(t, "failed_login", string(entries[1].Type))

	entries, err = svc.ListConnectionLogs(asAdmin(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSeedService(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewSeedService(st)

	_, err := svc.Seed(asJohn(), nil)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	report, err := svc.Seed(asAdmin(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Created, "demo data is already loaded")
	assert.NotZero(t, report.Skipped)
}
