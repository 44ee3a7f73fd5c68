package model

import "time"

// Ratings run from MinRating to MaxRating stars.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a member's rating of a book. A member reviews a book at most once.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_review_book_user,priority:1"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_book_user,priority:2;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ValidRating reports whether r is a rating a review may carry.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
