package service

import (
	"context"
	"fmt"
	"strings"

	"libraryhub/internal/access"
	"libraryhub/internal/cache"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

const defaultCategoryColor = "#3B82F6"

// CategoryInput carries category fields. On update, nil fields are left unchanged.
type CategoryInput struct {
	Name        *string
	Description *string
	Color       *string
}

// CategoryService manages categories.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	store *store.Store
	books bookCache
}

func NewCategoryService(st *store.Store, c *cache.Client) CategoryService {
	return &categoryService{store: st, books: bookCache{client: c}}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	categories, err := s.store.Repos().Categories.List(ctx)
	return categories, translate(err, "list categories", nil)
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	category, err := s.store.Repos().Categories.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get category", errors.ErrCategoryNotFound)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	category := &model.Category{Color: defaultCategoryColor}
	applyCategoryInput(category, in)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if err := s.checkName(ctx, repos, category.Name, 0); err != nil {
			return err
		}
		if err := repos.Categories.Create(ctx, category); err != nil {
			if isDuplicate(err) {
				return errors.ErrCategoryTaken
			}
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	var (
		category *model.Category
		books    []model.Book
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		if category, err = repos.Categories.FindByID(ctx, id); err != nil {
			return translate(err, "find category", errors.ErrCategoryNotFound)
		}
		applyCategoryInput(category, in)
		if err := s.checkName(ctx, repos, category.Name, id); err != nil {
			return err
		}
		if err := repos.Categories.Update(ctx, category); err != nil {
			if isDuplicate(err) {
				return errors.ErrCategoryTaken
			}
			return fmt.Errorf("update category: %w", err)
		}
		books, _, err = repos.Books.List(ctx, repository.BookFilter{CategoryID: id})
		return translate(err, "list books", nil)
	})
	if err != nil {
		return nil, err
	}
	s.books.invalidateBooks(ctx, books)
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return err
	}
	var books []model.Book
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		books, _, err = repos.Books.List(ctx, repository.BookFilter{CategoryID: id})
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		return translate(repos.Categories.Delete(ctx, id), "delete category", errors.ErrCategoryNotFound)
	})
	if err != nil {
		return err
	}
	s.books.invalidateBooks(ctx, books)
	return nil
}

// checkName fails when another category already uses name, ignoring case.
func (s *categoryService) checkName(ctx context.Context, repos *repository.Repositories, name string, self uint) error {
	categories, err := repos.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c.ID != self && strings.EqualFold(c.Name, name) {
			return errors.ErrCategoryTaken
		}
	}
	return nil
}

func applyCategoryInput(category *model.Category, in CategoryInput) {
	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.Color != nil && *in.Color != "" {
		category.Color = *in.Color
	}
}
