package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
)

// VideoRepository handles database operations for the video catalog
type VideoRepository struct {
	db *database.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *database.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = "id, video_url, thumbnail_url, title, age_category_id, category_id, source_type, status, created_at"

// GetEligibleVideos returns the videos a kid may see: age band at or below the
// kid's, not blocked for the kid, optionally narrowed to one category.
// Newest first.
func (r *VideoRepository) GetEligibleVideos(ctx context.Context, kidID int64, categoryID *int64) ([]models.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE age_category_id <= (SELECT age_category_id FROM kids WHERE id = ?)
		  AND id NOT IN (SELECT video_id FROM kid_blocked_videos WHERE kid_id = ?)
	`
	args := []interface{}{kidID, kidID}
	if categoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible videos: %w", err)
	}
	return scanVideos(rows)
}

// GetVideoByID retrieves a video, or nil if there is none
func (r *VideoRepository) GetVideoByID(ctx context.Context, id int64) (*models.Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE id = ?"
	video, err := scanVideo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

// GetVideosByIDs fetches a set of videos in one query. Order is unspecified
// and unknown IDs are skipped.
func (r *VideoRepository) GetVideosByIDs(ctx context.Context, ids []int64) ([]models.Video, error) {
	if len(ids) == 0 {
		return []models.Video{}, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "SELECT " + videoColumns + " FROM videos WHERE id IN (" + placeholders(len(ids)) + ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos by id: %w", err)
	}
	return scanVideos(rows)
}

// GetAllVideos returns the whole catalog, newest first
func (r *VideoRepository) GetAllVideos(ctx context.Context) ([]models.Video, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+videoColumns+" FROM videos ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	return scanVideos(rows)
}

// CreateVideo inserts a catalog entry and fills in its ID
func (r *VideoRepository) CreateVideo(ctx context.Context, v *models.Video) error {
	query := `
		INSERT INTO videos (video_url, thumbnail_url, title, age_category_id, category_id, source_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		v.VideoURL, v.ThumbnailURL, v.Title, v.AgeCategoryID, v.CategoryID, string(v.SourceType), string(v.Status))
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	v.ID = id
	r.db.Notify(database.TableVideos)
	return nil
}

// UpdateVideo replaces every editable field of a video
func (r *VideoRepository) UpdateVideo(ctx context.Context, v *models.Video) error {
	query := `
		UPDATE videos
		SET video_url = ?, thumbnail_url = ?, title = ?, age_category_id = ?, category_id = ?, source_type = ?, status = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		v.VideoURL, v.ThumbnailURL, v.Title, v.AgeCategoryID, v.CategoryID, string(v.SourceType), string(v.Status), v.ID)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	r.db.Notify(database.TableVideos)
	return nil
}

// DeleteVideo removes a video. Favorites, blocks and history rows cascade.
func (r *VideoRepository) DeleteVideo(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	r.db.Notify(database.TableVideos, database.TableFavorites, database.TableBlockedVideos, database.TableWatchHistory)
	return nil
}

func scanVideos(rows *sql.Rows) ([]models.Video, error) {
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

func scanVideo(row scanner) (*models.Video, error) {
	v := &models.Video{}
	var source, status string
	err := row.Scan(
		&v.ID,
		&v.VideoURL,
		&v.ThumbnailURL,
		&v.Title,
		&v.AgeCategoryID,
		&v.CategoryID,
		&source,
		&status,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.SourceType = models.SourceType(source)
	v.Status = models.VideoStatus(status)
	return v, nil
}
