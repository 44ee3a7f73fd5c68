package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// PublisherRepository defines persistence operations for publishers.
type PublisherRepository interface {
	Create(ctx context.Context, publisher *model.Publisher) error
	Update(ctx context.Context, publisher *model.Publisher) error
	FindByID(ctx context.Context, id uint) (*model.Publisher, error)
	List(ctx context.Context) ([]model.Publisher, error)
	Delete(ctx context.Context, id uint) error
}

type publisherRepository struct {
	db *gorm.DB
}

func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) Create(ctx context.Context, publisher *model.Publisher) error {
	return r.db.WithContext(ctx).Create(publisher).Error
}

func (r *publisherRepository) Update(ctx context.Context, publisher *model.Publisher) error {
	return r.db.WithContext(ctx).Save(publisher).Error
}

func (r *publisherRepository) FindByID(ctx context.Context, id uint) (*model.Publisher, error) {
	var publisher model.Publisher
	if err := r.db.WithContext(ctx).First(&publisher, id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

func (r *publisherRepository) List(ctx context.Context) ([]model.Publisher, error) {
	var publishers []model.Publisher
	if err := r.db.WithContext(ctx).Order("name").Find(&publishers).Error; err != nil {
		return nil, err
	}
	return publishers, nil
}

// Delete removes the publisher; its books keep existing without one.
func (r *publisherRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	err := db.Model(&model.Book{}).Unscoped().
		Where("publisher_id = ?", id).
		Update("publisher_id", nil).Error
	if err != nil {
		return err
	}
	res := db.Delete(&model.Publisher{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
