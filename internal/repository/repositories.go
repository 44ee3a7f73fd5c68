package repository

import "gorm.io/gorm"

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Users          UserRepository
	Authors        AuthorRepository
	Categories     CategoryRepository
	Publishers     PublisherRepository
	Books          BookRepository
	Loans          LoanRepository
	Reservations   ReservationRepository
	Reviews        ReviewRepository
	Settings       SettingsRepository
	ConnectionLogs ConnectionLogRepository
}

// New binds all repositories to db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(db),
		Authors:        NewAuthorRepository(db),
		Categories:     NewCategoryRepository(db),
		Publishers:     NewPublisherRepository(db),
		Books:          NewBookRepository(db),
		Loans:          NewLoanRepository(db),
		Reservations:   NewReservationRepository(db),
		Reviews:        NewReviewRepository(db),
		Settings:       NewSettingsRepository(db),
		ConnectionLogs: NewConnectionLogRepository(db),
	}
}
