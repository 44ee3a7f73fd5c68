package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/service"
)

// ReservationHandler handles reservation endpoints.
type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

// CreateReservationRequest names the book to reserve.
type CreateReservationRequest struct {
	BookID uint `json:"book_id" validate:"required"`
}

// ListReservations godoc
// @Summary List reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Reservation
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	reservations, err := h.svc.ListReservations(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservations)
}

// CreateReservation godoc
// @Summary Reserve a book
// @Description Returns the caller's active reservation on the book when there is one.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReservationRequest true "Book to reserve"
// @Success 201 {object} model.Reservation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	var req CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reservation, err := h.svc.CreateReservation(c.Request().Context(), req.BookID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, reservation)
}

// CancelReservation godoc
// @Summary Cancel a reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} model.Reservation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	reservation, err := h.svc.CancelReservation(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservation)
}
