package repository

import (
	"context"

	"gorm.io/gorm"

	"libraryhub/internal/model"
)

// SettingsRepository stores the single library settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.LibrarySettings, error)
	Save(ctx context.Context, settings *model.LibrarySettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored settings, creating the defaults on first use.
func (r *settingsRepository) Get(ctx context.Context) (*model.LibrarySettings, error) {
	settings := model.DefaultSettings()
	err := r.db.WithContext(ctx).
		Where(&model.LibrarySettings{ID: model.SettingsID}).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.LibrarySettings) error {
	settings.ID = model.SettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
