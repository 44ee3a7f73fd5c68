package service

import (
	"context"
	"fmt"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// ReservationService records the wish to borrow a book. Reservations never
// change book availability or loans.
type ReservationService interface {
	CreateReservation(ctx context.Context, bookID uint) (*model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	CancelReservation(ctx context.Context, id uint) (*model.Reservation, error)
}

type reservationService struct {
	store *store.Store
	now   func() time.Time
}

func NewReservationService(st *store.Store) ReservationService {
	return &reservationService{store: st, now: time.Now}
}

// CreateReservation returns the caller's active reservation on the book,
// opening one when there is none.
func (s *reservationService) CreateReservation(ctx context.Context, bookID uint) (*model.Reservation, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var reservation *model.Reservation
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Books.FindByID(ctx, bookID); err != nil {
			return translate(err, "find book", errors.ErrBookNotFound)
		}
		existing, err := repos.Reservations.FindActive(ctx, p.UserID, bookID)
		switch {
		case err == nil && existing.ExpiresAt.After(now):
			reservation = existing
			return nil
		case err == nil:
			existing.Status = model.ReservationStatusExpired
			if err := repos.Reservations.Update(ctx, existing); err != nil {
				return fmt.Errorf("expire reservation: %w", err)
			}
		case !isNotFound(err):
			return fmt.Errorf("find reservation: %w", err)
		}

		created := &model.Reservation{
			BookID:     bookID,
			UserID:     p.UserID,
			ReservedAt: now,
			ExpiresAt:  now.Add(model.ReservationHold),
			Status:     model.ReservationStatusActive,
		}
		if err := repos.Reservations.Create(ctx, created); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		reservation = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, reservation.ID)
}

func (s *reservationService) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.Repos().Reservations.List(ctx, access.ScopeUserID(p))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	now := s.now()
	for i := range reservations {
		presentReservation(&reservations[i], now)
	}
	return reservations, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, id uint) (*model.Reservation, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		reservation, err := repos.Reservations.FindByID(ctx, id)
		if err != nil {
			return translate(err, "find reservation", errors.ErrReservationNotFound)
		}
		if _, err := access.RequireOwnerOrAdmin(ctx, reservation.UserID); err != nil {
			return err
		}
		if reservation.Status != model.ReservationStatusActive {
			return errors.ErrReservationClosed
		}
		reservation.Status = model.ReservationStatusCancelled
		return translate(repos.Reservations.Update(ctx, reservation), "cancel reservation", nil)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *reservationService) reload(ctx context.Context, id uint) (*model.Reservation, error) {
	reservation, err := s.store.Repos().Reservations.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "reload reservation", errors.ErrReservationNotFound)
	}
	presentReservation(reservation, s.now())
	return reservation, nil
}

func presentReservation(r *model.Reservation, now time.Time) {
	r.Status = r.EffectiveStatus(now)
}
