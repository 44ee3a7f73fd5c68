package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"libraryhub/internal/access"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// ReviewInput carries a new review.
type ReviewInput struct {
	BookID  uint
	Rating  int
	Comment string
}

// ReviewService lets members rate books.
type ReviewService interface {
	ListReviews(ctx context.Context, bookID uint) ([]model.Review, error)
	CreateReview(ctx context.Context, in ReviewInput) (*model.Review, error)
	DeleteReview(ctx context.Context, id uint) error
}

type reviewService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewReviewService(st *store.Store) ReviewService {
	return &reviewService{store: st, logger: moduleLogger("reviews")}
}

// ListReviews returns every review, or those of one book when bookID is set.
func (s *reviewService) ListReviews(ctx context.Context, bookID uint) ([]model.Review, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	reviews, err := s.store.Repos().Reviews.List(ctx, bookID)
	return reviews, translate(err, "list reviews", nil)
}

// CreateReview records the caller's review of a book.
func (s *reviewService) CreateReview(ctx context.Context, in ReviewInput) (*model.Review, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !model.ValidRating(in.Rating) {
		return nil, errors.ErrInvalidRating
	}

	review := &model.Review{
		BookID:  in.BookID,
		UserID:  p.UserID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Books.FindByID(ctx, in.BookID); err != nil {
			return translate(err, "find book", errors.ErrBookNotFound)
		}
		if _, err := repos.Reviews.FindByBookAndUser(ctx, in.BookID, p.UserID); err == nil {
			return errors.ErrReviewExists
		} else if !isNotFound(err) {
			return fmt.Errorf("find review: %w", err)
		}
		if err := repos.Reviews.Create(ctx, review); err != nil {
			if isDuplicate(err) {
				return errors.ErrReviewExists
			}
			return fmt.Errorf("create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("review created", "operation", "create_review", "outcome", "success",
		"book_id", in.BookID, "user_id", p.UserID, "rating", in.Rating)

	created, err := s.store.Repos().Reviews.FindByID(ctx, review.ID)
	if err != nil {
		return nil, translate(err, "reload review", errors.ErrReviewNotFound)
	}
	return created, nil
}

// DeleteReview removes a review; only its author or an administrator may.
func (s *reviewService) DeleteReview(ctx context.Context, id uint) error {
	if _, err := access.RequireAuth(ctx); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		review, err := repos.Reviews.FindByID(ctx, id)
		if err != nil {
			return translate(err, "find review", errors.ErrReviewNotFound)
		}
		if _, err := access.RequireOwnerOrAdmin(ctx, review.UserID); err != nil {
			return err
		}
		return translate(repos.Reviews.Delete(ctx, id), "delete review", errors.ErrReviewNotFound)
	})
}
