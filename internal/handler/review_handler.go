package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/service"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// ListReviewsQuery optionally restricts the listing to one book.
type ListReviewsQuery struct {
	BookID uint `query:"book_id"`
}

// CreateReviewRequest is a rating of one book by the caller.
type CreateReviewRequest struct {
	BookID  uint   `json:"book_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ListReviews godoc
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param book_id query int false "Book ID"
// @Success 200 {array} model.Review
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	var q ListReviewsQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	reviews, err := h.svc.ListReviews(c.Request().Context(), q.BookID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// CreateReview godoc
// @Summary Review a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, err := h.svc.CreateReview(c.Request().Context(), service.ReviewInput{
		BookID:  req.BookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Members may delete their own reviews; administrators any.
// @Tags reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReview(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
