package service

import (
	"context"
	"fmt"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/cache"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// AuthorInput carries author fields. On update, nil fields are left unchanged.
type AuthorInput struct {
	FirstName   *string
	LastName    *string
	Biography   *string
	BirthDate   *time.Time
	DeathDate   *time.Time
	Nationality *string
}

// AuthorService manages authors.
type AuthorService interface {
	ListAuthors(ctx context.Context, search string) ([]model.Author, error)
	GetAuthor(ctx context.Context, id uint) (*model.Author, error)
	CreateAuthor(ctx context.Context, in AuthorInput) (*model.Author, error)
	UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (*model.Author, error)
	DeleteAuthor(ctx context.Context, id uint) error
}

type authorService struct {
	store *store.Store
	books bookCache
}

// NewAuthorService builds an AuthorService. Cached books of an author are
// dropped when the author changes.
func NewAuthorService(st *store.Store, c *cache.Client) AuthorService {
	return &authorService{store: st, books: bookCache{client: c}}
}

func (s *authorService) ListAuthors(ctx context.Context, search string) ([]model.Author, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	authors, err := s.store.Repos().Authors.List(ctx, search)
	return authors, translate(err, "list authors", nil)
}

func (s *authorService) GetAuthor(ctx context.Context, id uint) (*model.Author, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	author, err := s.store.Repos().Authors.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get author", errors.ErrAuthorNotFound)
	}
	return author, nil
}

func (s *authorService) CreateAuthor(ctx context.Context, in AuthorInput) (*model.Author, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	author := &model.Author{}
	applyAuthorInput(author, in)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return translate(repos.Authors.Create(ctx, author), "create author", nil)
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (s *authorService) UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (*model.Author, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	var (
		author *model.Author
		books  []model.Book
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		if author, err = repos.Authors.FindByID(ctx, id); err != nil {
			return translate(err, "find author", errors.ErrAuthorNotFound)
		}
		applyAuthorInput(author, in)
		if err := repos.Authors.Update(ctx, author); err != nil {
			return fmt.Errorf("update author: %w", err)
		}
		books, _, err = repos.Books.List(ctx, repository.BookFilter{AuthorID: id})
		return translate(err, "list books", nil)
	})
	if err != nil {
		return nil, err
	}
	s.books.invalidateBooks(ctx, books)
	return author, nil
}

// DeleteAuthor removes the author; its books lose the reference only.
func (s *authorService) DeleteAuthor(ctx context.Context, id uint) error {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return err
	}
	var books []model.Book
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		books, _, err = repos.Books.List(ctx, repository.BookFilter{AuthorID: id})
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		return translate(repos.Authors.Delete(ctx, id), "delete author", errors.ErrAuthorNotFound)
	})
	if err != nil {
		return err
	}
	s.books.invalidateBooks(ctx, books)
	return nil
}

func applyAuthorInput(author *model.Author, in AuthorInput) {
	if in.FirstName != nil {
		author.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		author.LastName = *in.LastName
	}
	if in.Biography != nil {
		author.Biography = *in.Biography
	}
	if in.BirthDate != nil {
		author.BirthDate = in.BirthDate
	}
	if in.DeathDate != nil {
		author.DeathDate = in.DeathDate
	}
	if in.Nationality != nil {
		author.Nationality = *in.Nationality
	}
}
