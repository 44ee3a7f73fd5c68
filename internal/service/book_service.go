package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/cache"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// BookInput carries the fields of a new book.
type BookInput struct {
	Title       string
	Subtitle    string
	ISBN        string
	Description string
	PublishDate *time.Time
	Pages       int
	Language    string
	CoverImage  string
	Quantity    int

	// AvailableQuantity defaults to Quantity.
	AvailableQuantity *int

	// Status may only force BookStatusReserved; otherwise it is derived.
	Status model.BookStatus

	AuthorIDs   []uint
	CategoryIDs []uint
	PublisherID *uint
}

// BookUpdate replaces the supplied fields of a book. Nil fields are left
// unchanged; a nil slice keeps the current links.
type BookUpdate struct {
	Title             *string
	Subtitle          *string
	ISBN              *string
	Description       *string
	PublishDate       *time.Time
	Pages             *int
	Language          *string
	CoverImage        *string
	Quantity          *int
	AvailableQuantity *int
	Status            *model.BookStatus
	AuthorIDs         []uint
	CategoryIDs       []uint
	PublisherID       *uint
}

// BookPage is one page of a book listing.
type BookPage struct {
	Items []model.Book `json:"items"`
	Total int64        `json:"total"`
}

// BookService manages the catalog.
type BookService interface {
	ListBooks(ctx context.Context, filter repository.BookFilter) (*BookPage, error)
	GetBook(ctx context.Context, id uint) (*model.Book, error)
	CreateBook(ctx context.Context, in BookInput) (*model.Book, error)
	UpdateBook(ctx context.Context, id uint, in BookUpdate) (*model.Book, error)
	DeleteBook(ctx context.Context, id uint) error
}

type bookService struct {
	store *store.Store
	cache bookCache
}

// NewBookService builds a BookService; book details are cached in c.
func NewBookService(st *store.Store, c *cache.Client) BookService {
	return &bookService{store: st, cache: bookCache{client: c}}
}

func (s *bookService) ListBooks(ctx context.Context, filter repository.BookFilter) (*BookPage, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	books, total, err := s.store.Repos().Books.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &BookPage{Items: books, Total: total}, nil
}

func (s *bookService) GetBook(ctx context.Context, id uint) (*model.Book, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if book, ok := s.cache.get(ctx, id); ok {
		return book, nil
	}
	book, err := s.store.Repos().Books.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get book", errors.ErrBookNotFound)
	}
	s.cache.put(ctx, book)
	return book, nil
}

func (s *bookService) CreateBook(ctx context.Context, in BookInput) (*model.Book, error) {
	p, err := access.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	book := &model.Book{
		Title:             strings.TrimSpace(in.Title),
		Subtitle:          in.Subtitle,
		ISBN:              strings.TrimSpace(in.ISBN),
		Description:       in.Description,
		PublishDate:       in.PublishDate,
		Pages:             in.Pages,
		Language:          in.Language,
		CoverImage:        in.CoverImage,
		Quantity:          in.Quantity,
		AvailableQuantity: in.Quantity,
		Status:            in.Status,
		PublisherID:       in.PublisherID,
		CreatedByID:       &p.UserID,
	}
	if in.AvailableQuantity != nil {
		book.AvailableQuantity = *in.AvailableQuantity
	}
	if err := book.ValidateQuantities(); err != nil {
		return nil, err
	}
	book.NormalizeStatus()

	var created *model.Book
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		existing, err := repos.Books.FindByISBNWithDeleted(ctx, book.ISBN)
		if err == nil && !existing.DeletedAt.Valid {
			return errors.ErrISBNTaken
		} else if err != nil && !isNotFound(err) {
			return fmt.Errorf("find book: %w", err)
		}
		if err := resolveLinks(ctx, repos, book, in.AuthorIDs, in.CategoryIDs, in.PublisherID); err != nil {
			return err
		}
		if err == nil {
			err = s.restore(ctx, repos, existing, book)
		} else {
			err = repos.Books.Create(ctx, book)
		}
		if err != nil {
			if isDuplicate(err) {
				return errors.ErrISBNTaken
			}
			return fmt.Errorf("create book: %w", err)
		}
		created, err = repos.Books.FindByID(ctx, book.ID)
		return translate(err, "reload book", errors.ErrBookNotFound)
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, created.ID)
	return created, nil
}

// restore puts book back into the catalog in place of the deleted record
// with the same ISBN. Loans of the deleted record keep pointing at it.
func (s *bookService) restore(ctx context.Context, repos *repository.Repositories, deleted, book *model.Book) error {
	authors, categories := book.Authors, book.Categories
	book.ID = deleted.ID
	book.CreatedAt = deleted.CreatedAt
	book.Authors, book.Categories = nil, nil
	if err := repos.Books.Restore(ctx, book); err != nil {
		return err
	}
	if err := repos.Books.ReplaceAuthors(ctx, book, authors); err != nil {
		return fmt.Errorf("replace authors: %w", err)
	}
	if err := repos.Books.ReplaceCategories(ctx, book, categories); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	return nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uint, in BookUpdate) (*model.Book, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	var updated *model.Book
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		book, err := repos.Books.FindByID(ctx, id)
		if err != nil {
			return translate(err, "find book", errors.ErrBookNotFound)
		}
		if in.ISBN != nil {
			isbn := strings.TrimSpace(*in.ISBN)
			if isbn != book.ISBN {
				if _, err := repos.Books.FindByISBN(ctx, isbn); err == nil {
					return errors.ErrISBNTaken
				} else if !isNotFound(err) {
					return fmt.Errorf("find book: %w", err)
				}
				book.ISBN = isbn
			}
		}
		applyBookUpdate(book, in)
		if err := book.ValidateQuantities(); err != nil {
			return err
		}
		book.NormalizeStatus()

		if in.PublisherID != nil {
			if err := resolveLinks(ctx, repos, book, nil, nil, in.PublisherID); err != nil {
				return err
			}
		}
		if err := repos.Books.Update(ctx, book); err != nil {
			if isDuplicate(err) {
				return errors.ErrISBNTaken
			}
			return fmt.Errorf("update book: %w", err)
		}
		if in.AuthorIDs != nil {
			authors, err := findAuthors(ctx, repos, in.AuthorIDs)
			if err != nil {
				return err
			}
			if err := repos.Books.ReplaceAuthors(ctx, book, authors); err != nil {
				return fmt.Errorf("replace authors: %w", err)
			}
		}
		if in.CategoryIDs != nil {
			categories, err := findCategories(ctx, repos, in.CategoryIDs)
			if err != nil {
				return err
			}
			if err := repos.Books.ReplaceCategories(ctx, book, categories); err != nil {
				return fmt.Errorf("replace categories: %w", err)
			}
		}
		updated, err = repos.Books.FindByID(ctx, id)
		return translate(err, "reload book", errors.ErrBookNotFound)
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, id)
	return updated, nil
}

// applyBookUpdate copies the supplied fields. A quantity change without an
// explicit available quantity moves the available copies by the same amount.
func applyBookUpdate(book *model.Book, in BookUpdate) {
	if in.Title != nil {
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subtitle != nil {
		book.Subtitle = *in.Subtitle
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.PublishDate != nil {
		book.PublishDate = in.PublishDate
	}
	if in.Pages != nil {
		book.Pages = *in.Pages
	}
	if in.Language != nil {
		book.Language = *in.Language
	}
	if in.CoverImage != nil {
		book.CoverImage = *in.CoverImage
	}
	if in.Quantity != nil {
		if in.AvailableQuantity == nil {
			book.AvailableQuantity += *in.Quantity - book.Quantity
		}
		book.Quantity = *in.Quantity
	}
	if in.AvailableQuantity != nil {
		book.AvailableQuantity = *in.AvailableQuantity
	}
	if in.Status != nil {
		book.Status = *in.Status
	}
}

// DeleteBook soft-deletes a book; its loans stay readable.
func (s *bookService) DeleteBook(ctx context.Context, id uint) error {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return err
	}
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return translate(repos.Books.Delete(ctx, id), "delete book", errors.ErrBookNotFound)
	})
	if err != nil {
		return err
	}
	s.cache.invalidate(ctx, id)
	return nil
}

// resolveLinks checks that every referenced record exists and attaches it to
// book.
func resolveLinks(ctx context.Context, repos *repository.Repositories, book *model.Book, authorIDs, categoryIDs []uint, publisherID *uint) error {
	if publisherID != nil {
		if *publisherID == 0 {
			book.PublisherID = nil
		} else {
			if _, err := repos.Publishers.FindByID(ctx, *publisherID); err != nil {
				return translate(err, "find publisher", errors.ErrPublisherNotFound)
			}
			book.PublisherID = publisherID
		}
	}
	authors, err := findAuthors(ctx, repos, authorIDs)
	if err != nil {
		return err
	}
	categories, err := findCategories(ctx, repos, categoryIDs)
	if err != nil {
		return err
	}
	book.Authors = authors
	book.Categories = categories
	return nil
}

func findAuthors(ctx context.Context, repos *repository.Repositories, ids []uint) ([]model.Author, error) {
	ids = uniqueIDs(ids)
	authors, err := repos.Authors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	if len(authors) != len(ids) {
		return nil, errors.ErrAuthorNotFound
	}
	return authors, nil
}

func findCategories(ctx context.Context, repos *repository.Repositories, ids []uint) ([]model.Category, error) {
	ids = uniqueIDs(ids)
	categories, err := repos.Categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, errors.ErrCategoryNotFound
	}
	return categories, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
