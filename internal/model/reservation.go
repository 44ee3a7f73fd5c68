package model

import "time"

// ReservationStatus represents the status of a reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// ReservationHold is how long a reservation stays valid.
const ReservationHold = 7 * 24 * time.Hour

// Reservation records a user's wish to borrow a book. It never changes the
// book's availability.
type Reservation struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	BookID     uint              `json:"book_id" gorm:"not null;index"`
	UserID     uint              `json:"user_id" gorm:"not null;index"`
	ReservedAt time.Time         `json:"reservation_date" gorm:"not null"`
	ExpiresAt  time.Time         `json:"expiry_date" gorm:"not null"`
	Status     ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Notified   bool              `json:"notified" gorm:"not null"`

	// Relations
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// EffectiveStatus reads an active reservation past its expiry as expired.
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.Status == ReservationStatusActive && !now.Before(r.ExpiresAt) {
		return ReservationStatusExpired
	}
	return r.Status
}
