package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/service"
)

// PublisherHandler handles publisher endpoints.
type PublisherHandler struct {
	svc service.PublisherService
}

func NewPublisherHandler(svc service.PublisherService) *PublisherHandler {
	return &PublisherHandler{svc: svc}
}

// PublisherRequest carries publisher fields. On update, omitted fields keep their value.
type PublisherRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Website *string `json:"website" validate:"omitempty,url"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

func (r PublisherRequest) input() service.PublisherInput {
	return service.PublisherInput{Name: r.Name, Address: r.Address, Website: r.Website, Email: r.Email}
}

// ListPublishers godoc
// @Summary List publishers
// @Tags publishers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Publisher
// @Router /publishers [get]
func (h *PublisherHandler) ListPublishers(c echo.Context) error {
	publishers, err := h.svc.ListPublishers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publishers)
}

// GetPublisher godoc
// @Summary Get publisher by id
// @Tags publishers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Publisher ID"
// @Success 200 {object} model.Publisher
// @Failure 404 {object} errors.ErrorResponse
// @Router /publishers/{id} [get]
func (h *PublisherHandler) GetPublisher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	publisher, err := h.svc.GetPublisher(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publisher)
}

// CreatePublisher godoc
// @Summary Create publisher
// @Tags publishers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PublisherRequest true "Publisher data"
// @Success 201 {object} model.Publisher
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /publishers [post]
func (h *PublisherHandler) CreatePublisher(c echo.Context) error {
	var req PublisherRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == nil {
		return badRequest("name is required", "VALIDATION_ERROR")
	}
	publisher, err := h.svc.CreatePublisher(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, publisher)
}

// UpdatePublisher godoc
// @Summary Update publisher
// @Tags publishers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Publisher ID"
// @Param request body PublisherRequest true "Fields to change"
// @Success 200 {object} model.Publisher
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /publishers/{id} [put]
func (h *PublisherHandler) UpdatePublisher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req PublisherRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	publisher, err := h.svc.UpdatePublisher(c.Request().Context(), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, publisher)
}

// DeletePublisher godoc
// @Summary Delete publisher
// @Tags publishers
// @Security BearerAuth
// @Param id path int true "Publisher ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /publishers/{id} [delete]
func (h *PublisherHandler) DeletePublisher(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePublisher(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
