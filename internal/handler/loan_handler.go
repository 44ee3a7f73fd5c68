package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/model"
	"libraryhub/internal/service"
)

// LoanHandler handles the borrowing workflow.
type LoanHandler struct {
	loanService service.LoanService
}

// NewLoanHandler creates a new loan handler.
func NewLoanHandler(loanService service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents a borrow request.
type CreateLoanRequest struct {
	BookID uint   `json:"book_id" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// ListLoans godoc
// @Summary List loans
// @Description Administrators see every loan, users their own.
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, returned or overdue"
// @Success 200 {array} model.Loan
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c echo.Context) error {
	loans, err := h.loanService.ListLoans(c.Request().Context(), model.LoanStatus(c.QueryParam("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan godoc
// @Summary Get loan by id
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} model.Loan
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	loan, err := h.loanService.GetLoan(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// CreateLoan godoc
// @Summary Borrow a book
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLoanRequest true "Book to borrow"
// @Success 201 {object} model.Loan
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loan, err := h.loanService.CreateLoan(c.Request().Context(), req.BookID, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, loan)
}

// ReturnLoan godoc
// @Summary Return a borrowed book
// @Description Late returns are charged the late fee per overdue day, capped at the maximum late days.
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} model.Loan
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /loans/{id}/return [post]
func (h *LoanHandler) ReturnLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	loan, err := h.loanService.ReturnLoan(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}
