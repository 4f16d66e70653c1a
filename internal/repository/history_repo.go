package repository

import (
	"context"
	"fmt"
	"time"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
)

// HistoryRepository handles watch history
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

var historyKeys = []string{"kid_id", "video_id"}
var historyColumns = []string{"kid_id", "video_id", "progress_seconds", "last_watched_at"}

// RecordWatch inserts or refreshes the single history row for (kid, video)
func (r *HistoryRepository) RecordWatch(ctx context.Context, kidID, videoID int64, progressSeconds int, at time.Time) error {
	query := r.db.Dialect.UpsertQuery(database.TableWatchHistory, historyKeys, historyColumns)
	if _, err := r.db.ExecContext(ctx, query, kidID, videoID, progressSeconds, at.UTC()); err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}
	r.db.Notify(database.TableWatchHistory)
	return nil
}

// GetHistoryIDs returns the watched video IDs, most recently watched first
func (r *HistoryRepository) GetHistoryIDs(ctx context.Context, kidID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT video_id FROM watch_history WHERE kid_id = ? ORDER BY last_watched_at DESC, id DESC", kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return ids, nil
}

// GetHistory returns the kid's history rows, most recently watched first
func (r *HistoryRepository) GetHistory(ctx context.Context, kidID int64) ([]models.WatchHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kid_id, video_id, progress_seconds, last_watched_at
		FROM watch_history
		WHERE kid_id = ?
		ORDER BY last_watched_at DESC, id DESC`, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchHistory{}
	for rows.Next() {
		var h models.WatchHistory
		if err := rows.Scan(&h.ID, &h.KidID, &h.VideoID, &h.ProgressSeconds, &h.LastWatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
