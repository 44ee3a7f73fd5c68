package service

import (
	"context"
	"fmt"

	"libraryhub/internal/access"
	"libraryhub/internal/model"
	"libraryhub/internal/store"
)

// ConnectionLogService exposes the connection history to administrators.
type ConnectionLogService interface {
	ListConnectionLogs(ctx context.Context, limit int) ([]model.ConnectionLog, error)
}

type connectionLogService struct {
	store *store.Store
}

func NewConnectionLogService(st *store.Store) ConnectionLogService {
	return &connectionLogService{store: st}
}

// ListConnectionLogs returns the newest entries first; limit <= 0 returns all.
func (s *connectionLogService) ListConnectionLogs(ctx context.Context, limit int) ([]model.ConnectionLog, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	entries, err := s.store.Repos().ConnectionLogs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list connection logs: %w", err)
	}
	return entries, nil
}
