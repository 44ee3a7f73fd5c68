package router_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/app"
	"libraryhub/internal/auth"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/service"
	"libraryhub/internal/store/storetest"
)

var json = jsoniter.ConfigFastest

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	return app.New(app.Deps{
		Config:   &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Store:    storetest.Seeded(t),
		Sessions: auth.NewMemorySessionStore(),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session service.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin(t *testing.T) {
	e := newServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"wrong password", `{"email":"john.doe@email.com","password":"nope"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"malformed email is a failed login", `{"email":"john","password":"password"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing password", `{"email":"john.doe@email.com"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", `{"email":`, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}

	token := login(t, e, "john.doe@email.com")
	rec := do(t, e, http.MethodGet, "/api/auth/profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"john.doe@email.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginWithMalformedEmailIsLogged(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"admin","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, e, "admin@library.com")
	rec = do(t, e, http.MethodGet, "/api/connection-logs", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []model.ConnectionLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, model.ConnectionFailedLogin, entries[1].Type)
	assert.Equal(t, "admin", entries[1].UserEmail)
	assert.Equal(t, "Unknown", entries[1].UserName)
}

func TestValidationErrorsNameTheField(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, http.MethodPost, "/api/auth/register", "",
		`{"email":"ada","first_name":"Ada","last_name":"Lovelace","password":"p","password_confirm":"p"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "invalid format for field email, expected: email address", resp.Error)
}

func TestSecuredRoutesNeedASession(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/books", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", decodeError(t, rec).Code)

	rec = do(t, e, http.MethodGet, "/api/books", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, e, "jane.smith@email.com")
	rec = do(t, e, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/books", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "logged out tokens are rejected")
}

func TestAdminRoutesAreForbiddenToUsers(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "john.doe@email.com")

	requests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/users", ""},
		{http.MethodGet, "/api/connection-logs", ""},
		{http.MethodPut, "/api/settings", `{"max_books_per_user":10}`},
		{http.MethodPost, "/api/books", `{"title":"Brave New World","isbn":"978-0-06-085052-4","quantity":1}`},
		{http.MethodDelete, "/api/books/1", ""},
		{http.MethodPost, "/api/admin/seed", ""},
	}
	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := do(t, e, r.method, r.path, token, r.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "FORBIDDEN", resp.Code)
			assert.Equal(t, errors.ErrForbidden.Error(), resp.Error)
		})
	}
}

func TestBorrowAndReturn(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "jane.smith@email.com")

	rec := do(t, e, http.MethodPost, "/api/loans", token, `{"book_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var loan struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, "active", loan.Status)

	rec = do(t, e, http.MethodPost, "/api/loans", token, `{"book_id":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_COPIES_AVAILABLE", decodeError(t, rec).Code)

	john := login(t, e, "john.doe@email.com")
	rec = do(t, e, http.MethodPost, "/api/loans/"+strconv.FormatUint(uint64(loan.ID), 10)+"/return", john, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/loans/"+strconv.FormatUint(uint64(loan.ID), 10)+"/return", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"returned"`)

	rec = do(t, e, http.MethodGet, "/api/loans/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBooksQuery(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "john.doe@email.com")

	rec := do(t, e, http.MethodGet, "/api/books?search=orwell&limit=1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.BookPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 1)

	rec = do(t, e, http.MethodGet, "/api/books?status=lost", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviews(t *testing.T) {
	e := newServer(t)
	jane := login(t, e, "jane.smith@email.com")

	rec := do(t, e, http.MethodPost, "/api/reviews", jane, `{"book_id":2,"rating":6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "field rating must be at most 5", decodeError(t, rec).Error)

	rec = do(t, e, http.MethodPost, "/api/reviews", jane, `{"book_id":2,"rating":4,"comment":"Bleak."}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var review model.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
	assert.Equal(t, uint(3), review.UserID)

	rec = do(t, e, http.MethodPost, "/api/reviews", jane, `{"book_id":2,"rating":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "REVIEW_EXISTS", decodeError(t, rec).Code)

	john := login(t, e, "john.doe@email.com")
	rec = do(t, e, http.MethodGet, "/api/reviews?book_id=2", john, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reviews []model.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "Bleak.", reviews[0].Comment)

	rec = do(t, e, http.MethodGet, "/api/reviews?book_id=3", john, "")
	require.Equal(t, http.StatusOK, rec.Code)
	reviews = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	assert.Empty(t, reviews)

	path := "/api/reviews/" + strconv.FormatUint(uint64(review.ID), 10)
	rec = do(t, e, http.MethodDelete, path, john, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodDelete, path, jane, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodDelete, path, jane, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REVIEW_NOT_FOUND", decodeError(t, rec).Code)
}

func TestDashboard(t *testing.T) {
	e := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/dashboard", login(t, e, "admin@library.com"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_books":6`)

	rec = do(t, e, http.MethodGet, "/api/dashboard", login(t, e, "john.doe@email.com"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_loans":1`)
	assert.NotContains(t, rec.Body.String(), "total_books")
}

func TestRedisBackedSessionsAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e := app.New(app.Deps{
		Config:   &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Store:    storetest.Seeded(t),
		Sessions: auth.NewRedisSessionStore(client),
		Cache:    cache.Wrap(client),
	})

	token := login(t, e, "jane.smith@email.com")
	rec := do(t, e, http.MethodGet, "/api/books/5", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("book:5"))

	rec = do(t, e, http.MethodPost, "/api/loans", token, `{"book_id":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, mr.Exists("book:5"))

	rec = do(t, e, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, e, http.MethodGet, "/api/auth/profile", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
