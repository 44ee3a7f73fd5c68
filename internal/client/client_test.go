package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/app"
	"libraryhub/internal/auth"
	"libraryhub/internal/config"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store/storetest"
)

func newAPI(t *testing.T) string {
	t.Helper()
	e := app.New(app.Deps{
		Config:   &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Store:    storetest.Seeded(t),
		Sessions: auth.NewMemorySessionStore(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestClient_LoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	base := newAPI(t)
	path := filepath.Join(t.TempDir(), "state.json")

	storage, err := OpenFileStorage(path)
	require.NoError(t, err)
	user, err := New(base, storage).Login(ctx, "john.doe@email.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "John", user.FirstName)

	// A second process picks the session up from disk.
	reopened, err := OpenFileStorage(path)
	require.NoError(t, err)
	_, ok := reopened.Get(KeyAuthToken)
	assert.True(t, ok)

	c := New(base, reopened)
	restored, err := c.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "john.doe@email.com", restored.Email)

	current, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, model.RoleUser, current.Role)
}

func TestClient_RestoreClearsRejectedSession(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(KeyAuthToken, "stale"))
	require.NoError(t, storage.Set(KeyCurrentUser, `{"id":2}`))

	user, err := New(newAPI(t), storage).Restore(context.Background())
	assert.Nil(t, user)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, ok := storage.Get(KeyAuthToken)
	assert.False(t, ok)
	_, ok = storage.Get(KeyCurrentUser)
	assert.False(t, ok)
}

func TestClient_RestoreWithoutSession(t *testing.T) {
	user, err := New("http://127.0.0.1:1/api", NewMemoryStorage()).Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_BorrowingWorkflow(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t), NewMemoryStorage())
	_, err := c.Login(ctx, "jane.smith@email.com", "password")
	require.NoError(t, err)

	page, err := c.Books(ctx, repository.BookFilter{Search: "gatsby"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	gatsby := page.Items[0]

	loan, err := c.Borrow(ctx, gatsby.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusActive, loan.Status)

	book, err := c.Book(ctx, gatsby.ID)
	require.NoError(t, err)
	assert.Equal(t, gatsby.AvailableQuantity-1, book.AvailableQuantity)

	loans, err := c.Loans(ctx, model.LoanStatusActive)
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	returned, err := c.Return(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, returned.Status)

	_, err = c.Return(ctx, loan.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "LOAN_ALREADY_RETURNED", apiErr.Code)

	reservation, err := c.Reserve(ctx, gatsby.ID)
	require.NoError(t, err)
	cancelled, err := c.CancelReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)

	review, err := c.Review(ctx, gatsby.ID, 4, "Read it in one sitting.")
	require.NoError(t, err)
	_, err = c.Review(ctx, gatsby.ID, 2, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "REVIEW_EXISTS", apiErr.Code)
	reviews, err := c.Reviews(ctx, gatsby.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
	require.NoError(t, c.DeleteReview(ctx, review.ID))

	stats, err := c.Dashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats.User)
	assert.Equal(t, int64(1), stats.User.TotalBorrowed)

	_, err = c.ConnectionLogs(ctx, 10)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	require.NoError(t, c.Logout(ctx))
	_, ok := c.CurrentUser()
	assert.False(t, ok)
}
