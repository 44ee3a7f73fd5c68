package service

import (
	"context"
	"fmt"

	"libraryhub/internal/access"
	"libraryhub/internal/cache"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// PublisherInput carries publisher fields. On update, nil fields are left unchanged.
type PublisherInput struct {
	Name    *string
	Address *string
	Website *string
	Email   *string
}

// PublisherService manages publishers.
type PublisherService interface {
	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	GetPublisher(ctx context.Context, id uint) (*model.Publisher, error)
	CreatePublisher(ctx context.Context, in PublisherInput) (*model.Publisher, error)
	UpdatePublisher(ctx context.Context, id uint, in PublisherInput) (*model.Publisher, error)
	DeletePublisher(ctx context.Context, id uint) error
}

type publisherService struct {
	store *store.Store
	books bookCache
}

func NewPublisherService(st *store.Store, c *cache.Client) PublisherService {
	return &publisherService{store: st, books: bookCache{client: c}}
}

func (s *publisherService) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	publishers, err := s.store.Repos().Publishers.List(ctx)
	return publishers, translate(err, "list publishers", nil)
}

func (s *publisherService) GetPublisher(ctx context.Context, id uint) (*model.Publisher, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	publisher, err := s.store.Repos().Publishers.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get publisher", errors.ErrPublisherNotFound)
	}
	return publisher, nil
}

func (s *publisherService) CreatePublisher(ctx context.Context, in PublisherInput) (*model.Publisher, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	publisher := &model.Publisher{}
	applyPublisherInput(publisher, in)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return translate(repos.Publishers.Create(ctx, publisher), "create publisher", nil)
	})
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func (s *publisherService) UpdatePublisher(ctx context.Context, id uint, in PublisherInput) (*model.Publisher, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	var (
		publisher *model.Publisher
		books     []model.Book
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		if publisher, err = repos.Publishers.FindByID(ctx, id); err != nil {
			return translate(err, "find publisher", errors.ErrPublisherNotFound)
		}
		applyPublisherInput(publisher, in)
		if err := repos.Publishers.Update(ctx, publisher); err != nil {
			return fmt.Errorf("update publisher: %w", err)
		}
		books, _, err = repos.Books.List(ctx, repository.BookFilter{PublisherID: id})
		return translate(err, "list books", nil)
	})
	if err != nil {
		return nil, err
	}
	s.books.invalidateBooks(ctx, books)
	return publisher, nil
}

// DeletePublisher removes the publisher; its books keep existing without one.
func (s *publisherService) DeletePublisher(ctx context.Context, id uint) error {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return err
	}
	var books []model.Book
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		books, _, err = repos.Books.List(ctx, repository.BookFilter{PublisherID: id})
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		return translate(repos.Publishers.Delete(ctx, id), "delete publisher", errors.ErrPublisherNotFound)
	})
	if err != nil {
		return err
	}
	s.books.invalidateBooks(ctx, books)
	return nil
}

func applyPublisherInput(publisher *model.Publisher, in PublisherInput) {
	if in.Name != nil {
		publisher.Name = *in.Name
	}
	if in.Address != nil {
		publisher.Address = *in.Address
	}
	if in.Website != nil {
		publisher.Website = *in.Website
	}
	if in.Email != nil {
		publisher.Email = *in.Email
	}
}
