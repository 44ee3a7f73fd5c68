package model

import (
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/errors"
)

// BookStatus represents the circulation status of a book.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBorrowed  BookStatus = "borrowed"
	// BookStatusReserved is only ever set by an administrator.
	BookStatusReserved BookStatus = "reserved"
)

// Valid reports whether s is a known book status.
func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusBorrowed, BookStatusReserved:
		return true
	}
	return false
}

// Book is a catalog entry with a number of physical copies.
type Book struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Title             string         `json:"title" gorm:"size:300;not null;index"`
	Subtitle          string         `json:"subtitle,omitempty" gorm:"size:300"`
	ISBN              string         `json:"isbn" gorm:"uniqueIndex;size:17;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	PublishDate       *time.Time     `json:"publish_date,omitempty" gorm:"index"`
	Pages             int            `json:"pages"`
	Language          string         `json:"language" gorm:"size:10;not null;default:'fr'"`
	CoverImage        string         `json:"cover_image,omitempty" gorm:"size:500"`
	Status            BookStatus     `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	Quantity          int            `json:"quantity" gorm:"not null"`
	AvailableQuantity int            `json:"available_quantity" gorm:"not null"`
	PublisherID       *uint          `json:"publisher_id,omitempty" gorm:"index"`
	CreatedByID       *uint          `json:"created_by_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Authors    []Author   `json:"authors" gorm:"many2many:book_authors"`
	Categories []Category `json:"categories" gorm:"many2many:book_categories"`
	Publisher  *Publisher `json:"publisher,omitempty" gorm:"foreignKey:PublisherID"`
}

// IsAvailable reports whether a copy can be lent right now.
func (b *Book) IsAvailable() bool {
	return b.AvailableQuantity > 0
}

// CheckOut takes one copy out of circulation.
func (b *Book) CheckOut() error {
	if b.AvailableQuantity <= 0 {
		return errors.ErrNoCopiesAvailable
	}
	b.AvailableQuantity--
	if b.AvailableQuantity == 0 {
		b.Status = BookStatusBorrowed
	}
	return nil
}

// CheckIn puts one copy back into circulation.
func (b *Book) CheckIn() {
	if b.AvailableQuantity < b.Quantity {
		b.AvailableQuantity++
	}
	if b.AvailableQuantity > 0 {
		b.Status = BookStatusAvailable
	}
}

// ValidateQuantities enforces 0 <= available <= quantity.
func (b *Book) ValidateQuantities() error {
	if b.Quantity < 0 || b.AvailableQuantity < 0 || b.AvailableQuantity > b.Quantity {
		return errors.ErrInvalidQuantity
	}
	return nil
}

// NormalizeStatus derives the status from the available quantity unless an
// administrator marked the book reserved.
func (b *Book) NormalizeStatus() {
	if b.Status == BookStatusReserved {
		return
	}
	if b.AvailableQuantity > 0 {
		b.Status = BookStatusAvailable
		return
	}
	b.Status = BookStatusBorrowed
}
