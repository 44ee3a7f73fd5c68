package model

import (
	"time"
)

// Author is referenced by books but has its own lifecycle.
type Author struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	FirstName   string     `json:"first_name" gorm:"size:100;not null;index:idx_author_name,priority:2"`
	LastName    string     `json:"last_name" gorm:"size:100;not null;index:idx_author_name,priority:1"`
	Biography   string     `json:"biography,omitempty" gorm:"type:text"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality string     `json:"nationality,omitempty" gorm:"size:100"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FullName returns "First Last".
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Age returns the author's age at death, or at now when still alive.
// The second return value is false when the birth date is unknown.
func (a *Author) Age(now time.Time) (int, bool) {
	if a.BirthDate == nil {
		return 0, false
	}
	end := now
	if a.DeathDate != nil {
		end = *a.DeathDate
	}
	return end.Year() - a.BirthDate.Year(), true
}

// Category groups books by genre.
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Color       string `json:"color" gorm:"size:7;not null;default:'#3B82F6'"`
}

// Publisher is the optional publishing house of a book.
type Publisher struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:200;not null;index"`
	Address string `json:"address,omitempty" gorm:"type:text"`
	Website string `json:"website,omitempty" gorm:"size:255"`
	Email   string `json:"email,omitempty" gorm:"size:255"`
}
