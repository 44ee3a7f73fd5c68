package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/store/storetest"
)

func TestReservationService_CreateReservation(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewReservationService(st)

	first, err := svc.CreateReservation(asJane(), bookMockingbird)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusActive, first.Status)
	assert.Equal(t, janeID, first.UserID)
	assert.WithinDuration(t, first.ReservedAt.Add(7*24*time.Hour), first.ExpiresAt, time.Second)

	again, err := svc.CreateReservation(asJane(), bookMockingbird)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "one active reservation per user and book")

	book := loadBook(t, st, bookMockingbird)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusReserved, book.Status)

	_, err = svc.CreateReservation(asJane(), 999)
	assert.ErrorIs(t, err, errors.ErrBookNotFound)
}

func TestReservationService_ReservationLeavesAvailabilityAlone(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewReservationService(st)

	_, err := svc.CreateReservation(asJohn(), bookGatsby)
	require.NoError(t, err)

	book := loadBook(t, st, bookGatsby)
	assert.Equal(t, 5, book.AvailableQuantity)
	assert.Equal(t, model.BookStatusAvailable, book.Status)
}

func TestReservationService_ExpiredReservationIsReplaced(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewReservationService(st).(*reservationService)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	first, err := svc.CreateReservation(asJohn(), bookPride)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.AddDate(0, 0, 8) }
	second, err := svc.CreateReservation(asJohn(), bookPride)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := svc.ListReservations(asJohn())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ReservationStatusActive, list[0].Status)
	assert.Equal(t, model.ReservationStatusExpired, list[1].Status)
}

func TestReservationService_ListAndCancel(t *testing.T) {
	st := storetest.Seeded(t)
	svc := NewReservationService(st)

	johns, err := svc.CreateReservation(asJohn(), bookMockingbird)
	require.NoError(t, err)
	_, err = svc.CreateReservation(asJane(), bookMockingbird)
	require.NoError(t, err)

	mine, err := svc.ListReservations(asJohn())
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := svc.ListReservations(asAdmin())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.CancelReservation(asJane(), johns.ID)
	assert.ErrorIs(t, err, errors.ErrNotOwner)

	cancelled, err := svc.CancelReservation(asJohn(), johns.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)

	_, err = svc.CancelReservation(asJohn(), johns.ID)
	assert.ErrorIs(t, err, errors.ErrReservationClosed)
	_, err = svc.CancelReservation(asAdmin(), 999)
	assert.ErrorIs(t, err, errors.ErrReservationNotFound)
}
