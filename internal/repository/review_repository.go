package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	FindByBookAndUser(ctx context.Context, bookID, userID uint) (*model.Review, error)
	// List returns reviews newest first, restricted to bookID when non-zero.
	List(ctx context.Context, bookID uint) ([]model.Review, error)
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("Book", "User").Create(review).Error
}

func (r *reviewRepository) withRelations(ctx context.Context) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return r.db.WithContext(ctx).Preload("Book", unscoped).Preload("User", unscoped)
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.withRelations(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByBookAndUser(ctx context.Context, bookID, userID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, bookID uint) ([]model.Review, error) {
	q := r.withRelations(ctx).Order("created_at DESC, id DESC")
	if bookID != 0 {
		q = q.Where("book_id = ?", bookID)
	}
	var reviews []model.Review
	if err := q.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
