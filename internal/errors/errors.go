package errors

import (
	"errors"
	"net/http"
)

// Authorization errors.
var (
	// ErrNotAuthenticated is returned when no session is active.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the active user lacks administrator privileges.
	ErrForbidden = errors.New("forbidden: administrator privileges required")
	// ErrNotOwner is returned when a user acts on another user's record.
	ErrNotOwner = errors.New("forbidden: you can only act on your own records")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned when an inactive user tries to log in.
	ErrAccountDisabled = errors.New("account is disabled")
)

// Not-found errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrAuthorNotFound      = errors.New("author not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrPublisherNotFound   = errors.New("publisher not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReviewNotFound      = errors.New("review not found")
)

// Validation and business-rule errors.
var (
	// ErrPasswordMismatch is returned when the two password fields differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrISBNTaken is returned when two books share an ISBN.
	ErrISBNTaken = errors.New("a book with this ISBN already exists")
	// ErrCategoryTaken is returned when two categories share a name.
	ErrCategoryTaken = errors.New("a category with this name already exists")
	// ErrNoCopiesAvailable is returned when borrowing a book with no copy left.
	ErrNoCopiesAvailable = errors.New("no copies available")
	// ErrLoanLimitReached is returned when a user already holds the maximum number of loans.
	ErrLoanLimitReached = errors.New("loan limit reached")
	// ErrLoanAlreadyReturned is returned when returning a loan twice.
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	// ErrReservationClosed is returned when cancelling a reservation that is no longer active.
	ErrReservationClosed = errors.New("reservation is no longer active")
	// ErrCannotDeleteSelf is returned when an administrator deletes their own account.
	ErrCannotDeleteSelf = errors.New("cannot delete own account")
	// ErrInvalidQuantity is returned when 0 <= available <= quantity would not hold.
	ErrInvalidQuantity = errors.New("available quantity must be between 0 and quantity")
	// ErrInvalidRole is returned for a role outside the known set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus is returned for a book status outside the known set.
	ErrInvalidStatus = errors.New("invalid book status")
	// ErrReviewExists is returned when a member reviews the same book twice.
	ErrReviewExists = errors.New("you have already reviewed this book")
	// ErrInvalidRating is returned for a rating outside 1 to 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrInvalidSettings is returned when a loan policy value is not positive.
	ErrInvalidSettings = errors.New("settings values must be positive")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrNotOwner, http.StatusForbidden, "FORBIDDEN"},
	{ErrAccountDisabled, http.StatusForbidden, "ACCOUNT_DISABLED"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrBookNotFound, http.StatusNotFound, "BOOK_NOT_FOUND"},
	{ErrAuthorNotFound, http.StatusNotFound, "AUTHOR_NOT_FOUND"},
	{ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
	{ErrPublisherNotFound, http.StatusNotFound, "PUBLISHER_NOT_FOUND"},
	{ErrLoanNotFound, http.StatusNotFound, "LOAN_NOT_FOUND"},
	{ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND"},
	{ErrReviewNotFound, http.StatusNotFound, "REVIEW_NOT_FOUND"},
	{ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrISBNTaken, http.StatusConflict, "ISBN_TAKEN"},
	{ErrCategoryTaken, http.StatusConflict, "CATEGORY_TAKEN"},
	{ErrNoCopiesAvailable, http.StatusConflict, "NO_COPIES_AVAILABLE"},
	{ErrLoanLimitReached, http.StatusConflict, "LOAN_LIMIT_REACHED"},
	{ErrLoanAlreadyReturned, http.StatusConflict, "LOAN_ALREADY_RETURNED"},
	{ErrReservationClosed, http.StatusConflict, "RESERVATION_CLOSED"},
	{ErrReviewExists, http.StatusConflict, "REVIEW_EXISTS"},
	{ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{ErrCannotDeleteSelf, http.StatusBadRequest, "CANNOT_DELETE_SELF"},
	{ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidSettings, http.StatusBadRequest, "INVALID_SETTINGS"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// IsDomain reports whether err maps to a known domain error.
func IsDomain(err error) bool {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
