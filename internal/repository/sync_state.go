package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// SyncStateRepository — интерфейс для таблицы mcpsync_sync_state (одна строка).
type SyncStateRepository interface {
	// Get возвращает текущее состояние синхронизации.
	Get(ctx context.Context) (*model.SyncState, error)
	// Save сохраняет итог полной синхронизации.
	Save(ctx context.Context, res *model.SyncResult) error
}

// syncStateRepo — реализация SyncStateRepository.
type syncStateRepo struct {
	db DBTX
}

// NewSyncStateRepository создаёт репозиторий состояния синхронизации.
func NewSyncStateRepository(db DBTX) SyncStateRepository {
	return &syncStateRepo{db: db}
}

func (r *syncStateRepo) Get(ctx context.Context) (*model.SyncState, error) {
	query := `
		SELECT last_sync_at, last_synced, last_added, last_removed, last_revoked,
		       last_error, updated_at
		FROM mcpsync_sync_state
		WHERE id = 1`

	s := &model.SyncState{}
	err := r.db.QueryRow(ctx, query).Scan(
		&s.LastSyncAt, &s.LastSynced, &s.LastAdded, &s.LastRemoved, &s.LastRevoked,
		&s.LastError, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения mcpsync_sync_state: %w", err)
	}
	return s, nil
}

func (r *syncStateRepo) Save(ctx context.Context, res *model.SyncResult) error {
	var lastError *string
	if res.FirstError != "" {
		lastError = &res.FirstError
	}
	query := `
		UPDATE mcpsync_sync_state
		SET last_sync_at = $1,
		    last_synced = $2,
		    last_added = $3,
		    last_removed = $4,
		    last_revoked = $5,
		    last_error = $6,
		    updated_at = NOW()
		WHERE id = 1`

	_, err := r.db.Exec(ctx, query,
		res.CompletedAt, res.Synced, res.Added, res.Removed, res.Revoked, lastError,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления mcpsync_sync_state: %w", err)
	}
	return nil
}
