package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	Update(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id uint) (*model.Reservation, error)
	FindActive(ctx context.Context, userID, bookID uint) (*model.Reservation, error)
	List(ctx context.Context, userID uint) ([]model.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Omit("Book", "User").Create(reservation).Error
}

func (r *reservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Omit("Book", "User").Save(reservation).Error
}

func (r *reservationRepository) withRelations(ctx context.Context) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return r.db.WithContext(ctx).Preload("Book", unscoped).Preload("User", unscoped)
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.withRelations(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindActive returns the user's open reservation on a book.
func (r *reservationRepository) FindActive(ctx context.Context, userID, bookID uint) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, model.ReservationStatusActive).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// List returns reservations newest first, restricted to userID when non-zero.
func (r *reservationRepository) List(ctx context.Context, userID uint) ([]model.Reservation, error) {
	q := r.withRelations(ctx).Order("reserved_at DESC, id DESC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var reservations []model.Reservation
	if err := q.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
