package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/service"
)

// AuthorHandler handles author endpoints.
type AuthorHandler struct {
	svc service.AuthorService
}

func NewAuthorHandler(svc service.AuthorService) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// AuthorRequest carries author fields. On update, omitted fields keep their value.
type AuthorRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Biography   *string `json:"biography"`
	BirthDate   *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	DeathDate   *string `json:"death_date" validate:"omitempty,datetime=2006-01-02"`
	Nationality *string `json:"nationality" validate:"omitempty,max=100"`
}

func (r AuthorRequest) input() service.AuthorInput {
	return service.AuthorInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Biography:   r.Biography,
		BirthDate:   parseDate(r.BirthDate),
		DeathDate:   parseDate(r.DeathDate),
		Nationality: r.Nationality,
	}
}

// ListAuthors godoc
// @Summary List authors
// @Tags authors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches first or last name"
// @Success 200 {array} model.Author
// @Router /authors [get]
func (h *AuthorHandler) ListAuthors(c echo.Context) error {
	authors, err := h.svc.ListAuthors(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, authors)
}

// GetAuthor godoc
// @Summary Get author by id
// @Tags authors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 200 {object} model.Author
// @Failure 404 {object} errors.ErrorResponse
// @Router /authors/{id} [get]
func (h *AuthorHandler) GetAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	author, err := h.svc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

// CreateAuthor godoc
// @Summary Create author
// @Tags authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AuthorRequest true "Author data"
// @Success 201 {object} model.Author
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /authors [post]
func (h *AuthorHandler) CreateAuthor(c echo.Context) error {
	var req AuthorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.FirstName == nil || req.LastName == nil {
		return badRequest("first_name and last_name are required", "VALIDATION_ERROR")
	}
	author, err := h.svc.CreateAuthor(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, author)
}

// UpdateAuthor godoc
// @Summary Update author
// @Tags authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param request body AuthorRequest true "Fields to change"
// @Success 200 {object} model.Author
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /authors/{id} [put]
func (h *AuthorHandler) UpdateAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req AuthorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	author, err := h.svc.UpdateAuthor(c.Request().Context(), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

// DeleteAuthor godoc
// @Summary Delete author
// @Description The author's books are kept and lose the link.
// @Tags authors
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /authors/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
