package repository

import (
	"context"
	"fmt"
	"time"

	"kidsvids/internal/database"
)

// FavoriteRepository handles a kid's favorite videos
type FavoriteRepository struct {
	db *database.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *database.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// AddFavorite marks a video as favorite. Adding an existing favorite is a no-op.
func (r *FavoriteRepository) AddFavorite(ctx context.Context, kidID, videoID int64) error {
	query := r.db.Dialect.InsertIgnoreQuery(database.TableFavorites, "kid_id", "video_id", "created_at")
	if _, err := r.db.ExecContext(ctx, query, kidID, videoID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	r.db.Notify(database.TableFavorites)
	return nil
}

// RemoveFavorite deletes exactly the (kid, video) favorite, if present
func (r *FavoriteRepository) RemoveFavorite(ctx context.Context, kidID, videoID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kid_favorites WHERE kid_id = ? AND video_id = ?", kidID, videoID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	r.db.Notify(database.TableFavorites)
	return nil
}

// ToggleFavorite adds the favorite if absent and removes it if present,
// inside one transaction. It reports whether the video is now a favorite.
func (r *FavoriteRepository) ToggleFavorite(ctx context.Context, kidID, videoID int64) (bool, error) {
	var added bool
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM kid_favorites WHERE kid_id = ? AND video_id = ?", kidID, videoID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check favorite: %w", err)
		}

		if count > 0 {
			_, err = tx.ExecContext(ctx, "DELETE FROM kid_favorites WHERE kid_id = ? AND video_id = ?", kidID, videoID)
		} else {
			query := tx.GetDialect().InsertIgnoreQuery(database.TableFavorites, "kid_id", "video_id", "created_at")
			_, err = tx.ExecContext(ctx, query, kidID, videoID, time.Now().UTC())
			added = true
		}
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		return nil
	}, database.TableFavorites)
	if err != nil {
		return false, err
	}
	return added, nil
}

// GetFavoriteIDs returns the kid's favorite video IDs, most recently added first
func (r *FavoriteRepository) GetFavoriteIDs(ctx context.Context, kidID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT video_id FROM kid_favorites WHERE kid_id = ? ORDER BY created_at DESC, video_id DESC", kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan favorites: %w", err)
	}
	return ids, nil
}
