package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/auth"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

// Dataset is a catalog snapshot that can be loaded into an empty or
// partially filled store. Books and loans refer to other records by their
// natural keys.
type Dataset struct {
	Users      []SeedUser        `json:"users"`
	Authors    []model.Author    `json:"authors"`
	Categories []model.Category  `json:"categories"`
	Publishers []model.Publisher `json:"publishers"`
	Books      []SeedBook        `json:"books"`
	Loans      []SeedLoan        `json:"loans"`
}

// SeedUser is a user together with the plain-text password to hash.
type SeedUser struct {
	model.User
	Password string `json:"password"`
}

// SeedBook is a book with its links given by name.
type SeedBook struct {
	model.Book
	AuthorNames   []string `json:"author_names"` // "First Last"
	CategoryNames []string `json:"category_names"`
	PublisherName string   `json:"publisher_name"`
}

// SeedLoan links a book and a user by ISBN and email.
type SeedLoan struct {
	ISBN       string           `json:"isbn"`
	Email      string           `json:"email"`
	BorrowDate time.Time        `json:"borrow_date"`
	DueDate    time.Time        `json:"due_date"`
	Status     model.LoanStatus `json:"status"`
}

// SeedReport counts what a Seed call did.
type SeedReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Seed loads data, skipping records that already exist. Deleted users and
// books count as existing and are not brought back. It is safe to run
// repeatedly.
func (s *Store) Seed(ctx context.Context, data *Dataset) (SeedReport, error) {
	var report SeedReport
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		report = SeedReport{}
		return seed(ctx, tx, data, &report)
	})
	return report, err
}

func seed(ctx context.Context, tx *gorm.DB, data *Dataset, report *SeedReport) error {
	repos := repository.New(tx)
	if _, err := repos.Settings.Get(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	hashes := map[string]string{}
	for _, su := range data.Users {
		if _, err := repos.Users.FindByEmailWithDeleted(ctx, su.Email); err == nil {
			report.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		hash, ok := hashes[su.Password]
		if !ok {
			var err error
			if hash, err = auth.HashPassword(su.Password); err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			hashes[su.Password] = hash
		}
		user := su.User
		user.ID = 0
		user.PasswordHash = hash
		if err := repos.Users.Create(ctx, &user); err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		report.Created++
	}

	tx = tx.WithContext(ctx)
	authors := map[string]model.Author{}
	for _, a := range data.Authors {
		author := a
		author.ID = 0
		res := tx.Where(model.Author{FirstName: a.FirstName, LastName: a.LastName}).FirstOrCreate(&author)
		if res.Error != nil {
			return fmt.Errorf("seed author %s: %w", a.FullName(), res.Error)
		}
		count(report, res.RowsAffected)
		authors[author.FullName()] = author
	}

	categories := map[string]model.Category{}
	for _, c := range data.Categories {
		category := c
		category.ID = 0
		res := tx.Where(model.Category{Name: c.Name}).FirstOrCreate(&category)
		if res.Error != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, res.Error)
		}
		count(report, res.RowsAffected)
		categories[category.Name] = category
	}

	publishers := map[string]model.Publisher{}
	for _, p := range data.Publishers {
		publisher := p
		publisher.ID = 0
		res := tx.Where(model.Publisher{Name: p.Name}).FirstOrCreate(&publisher)
		if res.Error != nil {
			return fmt.Errorf("seed publisher %s: %w", p.Name, res.Error)
		}
		count(report, res.RowsAffected)
		publishers[publisher.Name] = publisher
	}

	for _, sb := range data.Books {
		if _, err := repos.Books.FindByISBNWithDeleted(ctx, sb.ISBN); err == nil {
			report.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed book %s: %w", sb.ISBN, err)
		}
		book := sb.Book
		book.ID = 0
		book.Authors = nil
		book.Categories = nil
		book.Publisher = nil
		for _, name := range sb.AuthorNames {
			if a, ok := authors[name]; ok {
				book.Authors = append(book.Authors, a)
			}
		}
		for _, name := range sb.CategoryNames {
			if c, ok := categories[name]; ok {
				book.Categories = append(book.Categories, c)
			}
		}
		if p, ok := publishers[sb.PublisherName]; ok {
			book.PublisherID = &p.ID
		}
		book.NormalizeStatus()
		if err := book.ValidateQuantities(); err != nil {
			return fmt.Errorf("seed book %s: %w", sb.ISBN, err)
		}
		if err := repos.Books.Create(ctx, &book); err != nil {
			return fmt.Errorf("seed book %s: %w", sb.ISBN, err)
		}
		report.Created++
	}

	for _, sl := range data.Loans {
		book, err := repos.Books.FindByISBNWithDeleted(ctx, sl.ISBN)
		if err != nil {
			return fmt.Errorf("seed loan for %s: %w", sl.ISBN, err)
		}
		user, err := repos.Users.FindByEmailWithDeleted(ctx, sl.Email)
		if err != nil {
			return fmt.Errorf("seed loan for %s: %w", sl.Email, err)
		}
		if book.DeletedAt.Valid || user.DeletedAt.Valid {
			report.Skipped++
			continue
		}
		loan := model.Loan{
			BookID:     book.ID,
			UserID:     user.ID,
			BorrowDate: sl.BorrowDate,
			DueDate:    sl.DueDate,
			Status:     sl.Status,
		}
		if loan.Status == "" {
			loan.Status = model.LoanStatusActive
		}
		res := tx.Where(&model.Loan{BookID: book.ID, UserID: user.ID, BorrowDate: sl.BorrowDate}).
			Omit("Book", "User").
			FirstOrCreate(&loan)
		if res.Error != nil {
			return fmt.Errorf("seed loan for %s: %w", sl.ISBN, res.Error)
		}
		count(report, res.RowsAffected)
	}
	return nil
}

func count(report *SeedReport, created int64) {
	if created > 0 {
		report.Created++
		return
	}
	report.Skipped++
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// DemoData returns the demo catalog: three accounts, five authors, six
// categories, three publishers, six books and one active loan of "1984".
func DemoData() *Dataset {
	const pexels = "https://images.pexels.com/photos/"
	return &Dataset{
		Users: []SeedUser{
			{User: model.User{Email: "admin@library.com", Username: "admin", FirstName: "Admin", LastName: "User", Role: model.RoleAdmin, JoinDate: date(2023, 1, 1), Avatar: pexels + "2379004/pexels-photo-2379004.jpeg", IsActive: true}, Password: DemoPassword},
			{User: model.User{Email: "john.doe@email.com", Username: "johndoe", FirstName: "John", LastName: "Doe", Role: model.RoleUser, JoinDate: date(2023, 6, 15), Avatar: pexels + "220453/pexels-photo-220453.jpeg", IsActive: true}, Password: DemoPassword},
			{User: model.User{Email: "jane.smith@email.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith", Role: model.RoleUser, JoinDate: date(2023, 8, 20), Avatar: pexels + "415829/pexels-photo-415829.jpeg", IsActive: true}, Password: DemoPassword},
		},
		Authors: []model.Author{
			{FirstName: "Gabriel", LastName: "García Márquez", Biography: "Colombian novelist and Nobel Prize winner", BirthDate: datePtr(1927, 3, 6), Nationality: "Colombian"},
			{FirstName: "George", LastName: "Orwell", Biography: "English novelist and social critic", BirthDate: datePtr(1903, 6, 25), Nationality: "British"},
			{FirstName: "Jane", LastName: "Austen", Biography: "English novelist known for romantic fiction", BirthDate: datePtr(1775, 12, 16), Nationality: "British"},
			{FirstName: "Harper", LastName: "Lee", Biography: "American novelist", BirthDate: datePtr(1926, 4, 28), Nationality: "American"},
			{FirstName: "F. Scott", LastName: "Fitzgerald", Biography: "American novelist and short story writer", BirthDate: datePtr(1896, 9, 24), Nationality: "American"},
		},
		Categories: []model.Category{
			{Name: "Magical Realism", Description: "Literary fiction with magical elements", Color: "#3B82F6"},
			{Name: "Dystopian Fiction", Description: "Fiction depicting dystopian societies", Color: "#EF4444"},
			{Name: "Romance", Description: "Romantic literature", Color: "#EC4899"},
			{Name: "Southern Gothic", Description: "Southern American literature", Color: "#F59E0B"},
			{Name: "Classic Literature", Description: "Timeless literary works", Color: "#8B5CF6"},
			{Name: "Political Satire", Description: "Satirical political commentary", Color: "#10B981"},
		},
		Publishers: []model.Publisher{
			{Name: "Gallimard", Email: "contact@gallimard.fr", Website: "https://www.gallimard.fr"},
			{Name: "Penguin Random House", Email: "contact@penguin.com", Website: "https://www.penguin.com"},
			{Name: "HarperCollins", Email: "contact@harpercollins.com", Website: "https://www.harpercollins.com"},
		},
		Books: []SeedBook{
			{
				Book: model.Book{
					Title: "One Hundred Years of Solitude", ISBN: "978-0-06-088328-7",
					Description: "A landmark novel that tells the story of the Buendía family over seven generations.",
					PublishDate: datePtr(1967, 5, 30), Pages: 417, Language: "fr",
					CoverImage: pexels + "1290141/pexels-photo-1290141.jpeg",
					Status:     model.BookStatusAvailable, Quantity: 3, AvailableQuantity: 3,
				},
				AuthorNames: []string{"Gabriel García Márquez"}, CategoryNames: []string{"Magical Realism"}, PublisherName: "Gallimard",
			},
			{
				Book: model.Book{
					Title: "1984", ISBN: "978-0-452-28423-4",
					Description: "A dystopian social science fiction novel about totalitarian control.",
					PublishDate: datePtr(1949, 6, 8), Pages: 328, Language: "en",
					CoverImage: pexels + "46274/pexels-photo-46274.jpeg",
					Status:     model.BookStatusBorrowed, Quantity: 2, AvailableQuantity: 1,
				},
				AuthorNames: []string{"George Orwell"}, CategoryNames: []string{"Dystopian Fiction"}, PublisherName: "Penguin Random House",
			},
			{
				Book: model.Book{
					Title: "Pride and Prejudice", ISBN: "978-0-14-143951-8",
					Description: "A romantic novel about manners, marriage, and society in Regency England.",
					PublishDate: datePtr(1813, 1, 28), Pages: 432, Language: "en",
					CoverImage: pexels + "1370295/pexels-photo-1370295.jpeg",
					Status:     model.BookStatusAvailable, Quantity: 4, AvailableQuantity: 4,
				},
				AuthorNames: []string{"Jane Austen"}, CategoryNames: []string{"Romance"}, PublisherName: "HarperCollins",
			},
			{
				Book: model.Book{
					Title: "To Kill a Mockingbird", ISBN: "978-0-06-112008-4",
					Description: "A novel about racial injustice and childhood in the American South.",
					PublishDate: datePtr(1960, 7, 11), Pages: 376, Language: "en",
					CoverImage: pexels + "1309766/pexels-photo-1309766.jpeg",
					Status:     model.BookStatusReserved, Quantity: 2, AvailableQuantity: 0,
				},
				AuthorNames: []string{"Harper Lee"}, CategoryNames: []string{"Southern Gothic"}, PublisherName: "HarperCollins",
			},
			{
				Book: model.Book{
					Title: "The Great Gatsby", ISBN: "978-0-7432-7356-5",
					Description: "A critique of the American Dream through the story of Jay Gatsby.",
					PublishDate: datePtr(1925, 4, 10), Pages: 180, Language: "en",
					CoverImage: pexels + "1130980/pexels-photo-1130980.jpeg",
					Status:     model.BookStatusAvailable, Quantity: 5, AvailableQuantity: 5,
				},
				AuthorNames: []string{"F. Scott Fitzgerald"}, CategoryNames: []string{"Classic Literature"}, PublisherName: "Penguin Random House",
			},
			{
				Book: model.Book{
					Title: "Animal Farm", ISBN: "978-0-452-28424-1",
					Description: "An allegorical novella about a group of farm animals who rebel against their owner.",
					PublishDate: datePtr(1945, 8, 17), Pages: 112, Language: "en",
					CoverImage: pexels + "1130980/pexels-photo-1130980.jpeg",
					Status:     model.BookStatusAvailable, Quantity: 3, AvailableQuantity: 3,
				},
				AuthorNames: []string{"George Orwell"}, CategoryNames: []string{"Political Satire"}, PublisherName: "Gallimard",
			},
		},
		Loans: []SeedLoan{
			{ISBN: "978-0-452-28423-4", Email: "john.doe@email.com", BorrowDate: date(2024, 1, 15), DueDate: date(2024, 2, 15), Status: model.LoanStatusActive},
		},
	}
}
