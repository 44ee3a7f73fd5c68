package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"libraryhub/internal/access"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// SettingsUpdate replaces the supplied settings. Nil fields are left unchanged.
type SettingsUpdate struct {
	MaxBooksPerUser     *int
	DefaultLoanDuration *int
	LateFeePerDay       *decimal.Decimal
	MaxLateDays         *int
}

// SettingsService reads and changes the loan policy.
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.LibrarySettings, error)
	UpdateSettings(ctx context.Context, in SettingsUpdate) (*model.LibrarySettings, error)
}

type settingsService struct {
	store *store.Store
}

func NewSettingsService(st *store.Store) SettingsService {
	return &settingsService{store: st}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.LibrarySettings, error) {
	if _, err := access.RequireAuth(ctx); err != nil {
		return nil, err
	}
	var settings *model.LibrarySettings
	// Get may create the defaults, so it runs as a mutation.
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		settings, err = repos.Settings.Get(ctx)
		return translate(err, "load settings", nil)
	})
	return settings, err
}

func (s *settingsService) UpdateSettings(ctx context.Context, in SettingsUpdate) (*model.LibrarySettings, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if !positive(in.MaxBooksPerUser) || !positive(in.DefaultLoanDuration) || !positive(in.MaxLateDays) {
		return nil, errors.ErrInvalidSettings
	}
	if in.LateFeePerDay != nil && in.LateFeePerDay.IsNegative() {
		return nil, errors.ErrInvalidSettings
	}

	var settings *model.LibrarySettings
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		if settings, err = repos.Settings.Get(ctx); err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if in.MaxBooksPerUser != nil {
			settings.MaxBooksPerUser = *in.MaxBooksPerUser
		}
		if in.DefaultLoanDuration != nil {
			settings.DefaultLoanDuration = *in.DefaultLoanDuration
		}
		if in.LateFeePerDay != nil {
			settings.LateFeePerDay = in.LateFeePerDay.Round(2)
		}
		if in.MaxLateDays != nil {
			settings.MaxLateDays = *in.MaxLateDays
		}
		return translate(repos.Settings.Save(ctx, settings), "save settings", nil)
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func positive(v *int) bool {
	return v == nil || *v > 0
}
