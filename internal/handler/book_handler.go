package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/service"
)

// BookHandler handles catalog endpoints.
type BookHandler struct {
	bookService service.BookService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// ListBooksQuery holds the listing filters.
type ListBooksQuery struct {
	Search      string `query:"search"`
	Status      string `query:"status" validate:"omitempty,oneof=available borrowed reserved"`
	Language    string `query:"language" validate:"max=10"`
	PublisherID uint   `query:"publisher_id"`
	AuthorID    uint   `query:"author_id"`
	CategoryID  uint   `query:"category_id"`
	Limit       int    `query:"limit" validate:"gte=0,lte=100"`
	Offset      int    `query:"offset" validate:"gte=0"`
}

// CreateBookRequest represents a new catalog entry.
type CreateBookRequest struct {
	Title             string  `json:"title" validate:"required,max=300"`
	Subtitle          string  `json:"subtitle" validate:"max=300"`
	ISBN              string  `json:"isbn" validate:"required,max=17"`
	Description       string  `json:"description"`
	PublishDate       *string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Pages             int     `json:"pages" validate:"gte=0"`
	Language          string  `json:"language" validate:"max=10"`
	CoverImage        string  `json:"cover_image" validate:"omitempty,url"`
	Quantity          int     `json:"quantity" validate:"gte=0"`
	AvailableQuantity *int    `json:"available_quantity" validate:"omitempty,gte=0"`
	Status            string  `json:"status" validate:"omitempty,oneof=available borrowed reserved"`
	AuthorIDs         []uint  `json:"author_ids"`
	CategoryIDs       []uint  `json:"category_ids"`
	PublisherID       *uint   `json:"publisher_id"`
}

// UpdateBookRequest carries the fields to change. Omitted fields keep their
// value; an omitted id list keeps the current links.
type UpdateBookRequest struct {
	Title             *string `json:"title" validate:"omitempty,min=1,max=300"`
	Subtitle          *string `json:"subtitle" validate:"omitempty,max=300"`
	ISBN              *string `json:"isbn" validate:"omitempty,min=1,max=17"`
	Description       *string `json:"description"`
	PublishDate       *string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Pages             *int    `json:"pages" validate:"omitempty,gte=0"`
	Language          *string `json:"language" validate:"omitempty,max=10"`
	CoverImage        *string `json:"cover_image" validate:"omitempty,url"`
	Quantity          *int    `json:"quantity" validate:"omitempty,gte=0"`
	AvailableQuantity *int    `json:"available_quantity" validate:"omitempty,gte=0"`
	Status            *string `json:"status" validate:"omitempty,oneof=available borrowed reserved"`
	AuthorIDs         []uint  `json:"author_ids"`
	CategoryIDs       []uint  `json:"category_ids"`
	PublisherID       *uint   `json:"publisher_id"`
}

// ListBooks godoc
// @Summary List books
// @Description Search matches title, ISBN, author and category names.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "available, borrowed or reserved"
// @Param language query string false "Language code"
// @Param publisher_id query int false "Publisher ID"
// @Param author_id query int false "Author ID"
// @Param category_id query int false "Category ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} service.BookPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	var q ListBooksQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	page, err := h.bookService.ListBooks(c.Request().Context(), repository.BookFilter{
		Search:      q.Search,
		Status:      model.BookStatus(q.Status),
		Language:    q.Language,
		PublisherID: q.PublisherID,
		AuthorID:    q.AuthorID,
		CategoryID:  q.CategoryID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetBook godoc
// @Summary Get book by id
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.bookService.GetBook(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBook godoc
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookRequest true "Book data"
// @Success 201 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	var req CreateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.bookService.CreateBook(c.Request().Context(), service.BookInput{
		Title:             req.Title,
		Subtitle:          req.Subtitle,
		ISBN:              req.ISBN,
		Description:       req.Description,
		PublishDate:       parseDate(req.PublishDate),
		Pages:             req.Pages,
		Language:          req.Language,
		CoverImage:        req.CoverImage,
		Quantity:          req.Quantity,
		AvailableQuantity: req.AvailableQuantity,
		Status:            model.BookStatus(req.Status),
		AuthorIDs:         req.AuthorIDs,
		CategoryIDs:       req.CategoryIDs,
		PublisherID:       req.PublisherID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook godoc
// @Summary Update book
// @Description Changing quantity without available_quantity shifts the available copies by the same amount.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body UpdateBookRequest true "Fields to change"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	update := service.BookUpdate{
		Title:             req.Title,
		Subtitle:          req.Subtitle,
		ISBN:              req.ISBN,
		Description:       req.Description,
		PublishDate:       parseDate(req.PublishDate),
		Pages:             req.Pages,
		Language:          req.Language,
		CoverImage:        req.CoverImage,
		Quantity:          req.Quantity,
		AvailableQuantity: req.AvailableQuantity,
		AuthorIDs:         req.AuthorIDs,
		CategoryIDs:       req.CategoryIDs,
		PublisherID:       req.PublisherID,
	}
	if req.Status != nil {
		status := model.BookStatus(*req.Status)
		update.Status = &status
	}
	book, err := h.bookService.UpdateBook(c.Request().Context(), id, update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary Delete book
// @Tags books
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.bookService.DeleteBook(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
