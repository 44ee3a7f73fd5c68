// Package client talks to the library HTTP API and keeps the session token
// and profile of the signed-in user in a local Storage.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"libraryhub/internal/errors"
	"libraryhub/internal/handler"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/service"
)

var json = jsoniter.ConfigFastest

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Client is an API client bound to one Storage.
type Client struct {
	http    *resty.Client
	storage Storage
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, storage Storage) *Client {
	rc := resty.New()
	rc.SetBaseURL(baseURL)
	rc.SetTimeout(15 * time.Second)
	rc.SetHeader("Content-Type", "application/json")
	rc.SetHeader("User-Agent", "libraryctl/1.0")
	rc.JSONMarshal = json.Marshal
	rc.JSONUnmarshal = json.Unmarshal
	return &Client{http: rc, storage: storage}
}

// Restore resumes the persisted session. It returns nil when no session was
// stored; a token the server no longer accepts clears the stored state.
func (c *Client) Restore(ctx context.Context) (*model.User, error) {
	if _, ok := c.storage.Get(KeyAuthToken); !ok {
		return nil, nil
	}
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		if clearErr := c.clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, err
	}
	if err := c.remember("", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the stored profile, if any.
func (c *Client) CurrentUser() (*model.User, bool) {
	raw, ok := c.storage.Get(KeyCurrentUser)
	if !ok {
		return nil, false
	}
	var user model.User
	if err := json.UnmarshalFromString(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var session service.Session
	req := handler.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &session); err != nil {
		return nil, err
	}
	return session.User, c.remember(session.Token, session.User)
}

func (c *Client) Register(ctx context.Context, req handler.RegisterRequest) (*model.User, error) {
	var session service.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &session); err != nil {
		return nil, err
	}
	return session.User, c.remember(session.Token, session.User)
}

// Logout ends the session on the server and always forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.clear(); clearErr != nil {
		return clearErr
	}
	return err
}

func (c *Client) Books(ctx context.Context, filter repository.BookFilter) (*service.BookPage, error) {
	query := map[string]string{}
	set := func(k string, v string) {
		if v != "" && v != "0" {
			query[k] = v
		}
	}
	set("search", filter.Search)
	set("status", string(filter.Status))
	set("language", filter.Language)
	set("publisher_id", strconv.FormatUint(uint64(filter.PublisherID), 10))
	set("author_id", strconv.FormatUint(uint64(filter.AuthorID), 10))
	set("category_id", strconv.FormatUint(uint64(filter.CategoryID), 10))
	set("limit", strconv.Itoa(filter.Limit))
	set("offset", strconv.Itoa(filter.Offset))

	var page service.BookPage
	if err := c.doQuery(ctx, "/books", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Book(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+itoa(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) Borrow(ctx context.Context, bookID uint, notes string) (*model.Loan, error) {
	var loan model.Loan
	req := handler.CreateLoanRequest{BookID: bookID, Notes: notes}
	if err := c.do(ctx, http.MethodPost, "/loans", req, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) Return(ctx context.Context, loanID uint) (*model.Loan, error) {
	var loan model.Loan
	if err := c.do(ctx, http.MethodPost, "/loans/"+itoa(loanID)+"/return", nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) Loans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	var loans []model.Loan
	query := map[string]string{}
	if status != "" {
		query["status"] = string(status)
	}
	if err := c.doQuery(ctx, "/loans", query, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (c *Client) Reserve(ctx context.Context, bookID uint) (*model.Reservation, error) {
	var reservation model.Reservation
	req := handler.CreateReservationRequest{BookID: bookID}
	if err := c.do(ctx, http.MethodPost, "/reservations", req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *Client) Reservations(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *Client) CancelReservation(ctx context.Context, id uint) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations/"+itoa(id)+"/cancel", nil, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *Client) Review(ctx context.Context, bookID uint, rating int, comment string) (*model.Review, error) {
	var review model.Review
	req := handler.CreateReviewRequest{BookID: bookID, Rating: rating, Comment: comment}
	if err := c.do(ctx, http.MethodPost, "/reviews", req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Reviews lists reviews, of one book when bookID is non-zero.
func (c *Client) Reviews(ctx context.Context, bookID uint) ([]model.Review, error) {
	var reviews []model.Review
	query := map[string]string{}
	if bookID != 0 {
		query["book_id"] = itoa(bookID)
	}
	if err := c.doQuery(ctx, "/reviews", query, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) DeleteReview(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+itoa(id), nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*service.DashboardStats, error) {
	var stats service.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Settings(ctx context.Context) (*model.LibrarySettings, error) {
	var settings model.LibrarySettings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) ConnectionLogs(ctx context.Context, limit int) ([]model.ConnectionLog, error) {
	var entries []model.ConnectionLog
	query := map[string]string{}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	if err := c.doQuery(ctx, "/connection-logs", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.request(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	return check(req.Execute(method, path))
}

func (c *Client) doQuery(ctx context.Context, path string, query map[string]string, result any) error {
	req := c.request(ctx).SetQueryParams(query).SetResult(result)
	return check(req.Get(path))
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&errors.ErrorResponse{})
	if token, ok := c.storage.Get(KeyAuthToken); ok {
		req.SetAuthToken(token)
	}
	return req
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errors.ErrorResponse); ok && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}

// remember stores the token, unless empty, and the profile.
func (c *Client) remember(token string, user *model.User) error {
	if token != "" {
		if err := c.storage.Set(KeyAuthToken, token); err != nil {
			return err
		}
	}
	raw, err := json.MarshalToString(user)
	if err != nil {
		return err
	}
	return c.storage.Set(KeyCurrentUser, raw)
}

func (c *Client) clear() error {
	return c.storage.Delete(KeyAuthToken, KeyCurrentUser)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
