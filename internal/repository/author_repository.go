package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// AuthorRepository defines persistence operations for authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	Update(ctx context.Context, author *model.Author) error
	FindByID(ctx context.Context, id uint) (*model.Author, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Author, error)
	List(ctx context.Context, search string) ([]model.Author, error)
	Delete(ctx context.Context, id uint) error
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *model.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *authorRepository) Update(ctx context.Context, author *model.Author) error {
	return r.db.WithContext(ctx).Save(author).Error
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*model.Author, error) {
	var author model.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByIDs returns the authors matching ids. Missing ids are silently
// skipped; callers compare lengths.
func (r *authorRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Author, error) {
	var authors []model.Author
	if len(ids) == 0 {
		return authors, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *authorRepository) List(ctx context.Context, search string) ([]model.Author, error) {
	var authors []model.Author
	q := r.db.WithContext(ctx).Order("last_name, first_name")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}
	if err := q.Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

// Delete removes the author and detaches it from every book.
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM book_authors WHERE author_id = ?", id).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Author{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
