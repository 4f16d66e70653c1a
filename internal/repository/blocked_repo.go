package repository

import (
	"context"
	"fmt"
	"time"

	"kidsvids/internal/database"
)

// BlockedVideoRepository handles the videos a parent has blocked for a kid
type BlockedVideoRepository struct {
	db *database.DB
}

// NewBlockedVideoRepository creates a new blocked video repository
func NewBlockedVideoRepository(db *database.DB) *BlockedVideoRepository {
	return &BlockedVideoRepository{db: db}
}

// BlockVideo hides a video from a kid. Blocking twice is a no-op.
func (r *BlockedVideoRepository) BlockVideo(ctx context.Context, kidID, videoID int64) error {
	query := r.db.Dialect.InsertIgnoreQuery(database.TableBlockedVideos, "kid_id", "video_id", "created_at")
	if _, err := r.db.ExecContext(ctx, query, kidID, videoID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to block video: %w", err)
	}
	r.db.Notify(database.TableBlockedVideos)
	return nil
}

// UnblockVideo removes exactly the (kid, video) block, if present
func (r *BlockedVideoRepository) UnblockVideo(ctx context.Context, kidID, videoID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kid_blocked_videos WHERE kid_id = ? AND video_id = ?", kidID, videoID)
	if err != nil {
		return fmt.Errorf("failed to unblock video: %w", err)
	}
	r.db.Notify(database.TableBlockedVideos)
	return nil
}

// GetBlockedIDs returns the kid's blocked video IDs, most recently blocked first
func (r *BlockedVideoRepository) GetBlockedIDs(ctx context.Context, kidID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT video_id FROM kid_blocked_videos WHERE kid_id = ? ORDER BY created_at DESC, video_id DESC", kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked videos: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan blocked videos: %w", err)
	}
	return ids, nil
}
