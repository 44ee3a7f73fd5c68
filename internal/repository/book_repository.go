package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// BookFilter narrows a book listing. Zero values mean "no constraint".
type BookFilter struct {
	// Search matches title, ISBN, author names and category names,
	// case-insensitively.
	Search      string
	Status      model.BookStatus
	Language    string
	PublisherID uint
	AuthorID    uint
	CategoryID  uint
	Limit       int
	Offset      int
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	ReplaceAuthors(ctx context.Context, book *model.Book, authors []model.Author) error
	ReplaceCategories(ctx context.Context, book *model.Book, categories []model.Category) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	// FindByISBNWithDeleted also returns a soft-deleted book.
	FindByISBNWithDeleted(ctx context.Context, isbn string) (*model.Book, error)
	Restore(ctx context.Context, book *model.Book) error
	List(ctx context.Context, filter BookFilter) ([]model.Book, int64, error)
	Recent(ctx context.Context, limit int) ([]model.Book, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.BookStatus) (int64, error)
	SumAvailable(ctx context.Context) (int64, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create inserts the book and links the authors and categories it carries.
// Linked records must already exist.
func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).
		Omit("Authors.*", "Categories.*", "Publisher").
		Create(book).Error
}

// Update saves the scalar columns only; links are changed through
// ReplaceAuthors and ReplaceCategories.
func (r *bookRepository) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).
		Omit("Authors", "Categories", "Publisher").
		Save(book).Error
}

func (r *bookRepository) ReplaceAuthors(ctx context.Context, book *model.Book, authors []model.Author) error {
	return r.db.WithContext(ctx).
		Model(book).
		Association("Authors").
		Replace(authors)
}

func (r *bookRepository) ReplaceCategories(ctx context.Context, book *model.Book, categories []model.Category) error {
	return r.db.WithContext(ctx).
		Model(book).
		Association("Categories").
		Replace(categories)
}

func (r *bookRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		Preload("Publisher")
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := r.preloaded(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByISBNWithDeleted(ctx context.Context, isbn string) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Unscoped().Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Restore saves a soft-deleted book back into the catalog. Like Update it
// writes the scalar columns only.
func (r *bookRepository) Restore(ctx context.Context, book *model.Book) error {
	book.DeletedAt = gorm.DeletedAt{}
	return r.db.WithContext(ctx).
		Unscoped().
		Omit("Authors", "Categories", "Publisher").
		Save(book).Error
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]model.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Book{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		byAuthor := r.db.Table("book_authors").
			Select("book_authors.book_id").
			Joins("JOIN authors ON authors.id = book_authors.author_id").
			Where("LOWER(authors.first_name) LIKE ? OR LOWER(authors.last_name) LIKE ? OR LOWER(CONCAT(authors.first_name, ' ', authors.last_name)) LIKE ?",
				like, like, like)
		byCategory := r.db.Table("book_categories").
			Select("book_categories.book_id").
			Joins("JOIN categories ON categories.id = book_categories.category_id").
			Where("LOWER(categories.name) LIKE ?", like)
		q = q.Where(
			"LOWER(books.title) LIKE ? OR LOWER(books.isbn) LIKE ? OR books.id IN (?) OR books.id IN (?)",
			like, like, byAuthor, byCategory,
		)
	}
	if filter.Status != "" {
		q = q.Where("books.status = ?", filter.Status)
	}
	if filter.Language != "" {
		q = q.Where("books.language = ?", filter.Language)
	}
	if filter.PublisherID != 0 {
		q = q.Where("books.publisher_id = ?", filter.PublisherID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("books.id IN (?)", r.db.Table("book_authors").
			Select("book_id").Where("author_id = ?", filter.AuthorID))
	}
	if filter.CategoryID != 0 {
		q = q.Where("books.id IN (?)", r.db.Table("book_categories").
			Select("book_id").Where("category_id = ?", filter.CategoryID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Authors").Preload("Categories").Preload("Publisher").Order("books.title, books.id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var books []model.Book
	if err := q.Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) Recent(ctx context.Context, limit int) ([]model.Book, error) {
	var books []model.Book
	err := r.preloaded(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Delete soft-deletes the book so that loans keep their reference.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Count(&n).Error
	return n, err
}

func (r *bookRepository) CountByStatus(ctx context.Context, status model.BookStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// SumAvailable totals the copies currently on the shelves.
func (r *bookRepository) SumAvailable(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).
		Select("COALESCE(SUM(available_quantity), 0)").
		Scan(&total).Error
	return total, err
}
