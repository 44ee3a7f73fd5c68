package service

import (
	"context"
	"log/slog"

	"libraryhub/internal/access"
	"libraryhub/internal/store"
)

// SeedService loads catalog snapshots on behalf of an administrator.
type SeedService interface {
	// Seed loads data, or the demo catalog when data is nil. Existing
	// records are skipped.
	Seed(ctx context.Context, data *store.Dataset) (store.SeedReport, error)
}

type seedService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewSeedService(st *store.Store) SeedService {
	return &seedService{store: st, logger: moduleLogger("seed")}
}

func (s *seedService) Seed(ctx context.Context, data *store.Dataset) (store.SeedReport, error) {
	p, err := access.RequireAdmin(ctx)
	if err != nil {
		return store.SeedReport{}, err
	}
	if data == nil {
		data = store.DemoData()
	}
	report, err := s.store.Seed(ctx, data)
	if err != nil {
		s.logger.Error("seed failed", "operation", "seed", "outcome", "failure", "error", err)
		return report, err
	}
	s.logger.Info("seed completed", "operation", "seed", "outcome", "success",
		"user_id", p.UserID, "created", report.Created, "skipped", report.Skipped)
	return report, nil
}
