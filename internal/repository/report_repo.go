package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kidsvids/internal/database"
)

// VideoCount is a raw per-video aggregate; Title is empty when the video is gone
type VideoCount struct {
	VideoID int64
	Title   sql.NullString
	Count   int
}

// GroupCount is a raw grouped aggregate; Name is empty when the group has no label
type GroupCount struct {
	Key   string
	Name  sql.NullString
	Count int
}

// ReportRepository runs the aggregate queries behind the admin reports
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TopVideos counts rows per video in one of the overlay tables
func (r *ReportRepository) TopVideos(ctx context.Context, table string, limit int) ([]VideoCount, error) {
	switch table {
	case database.TableWatchHistory, database.TableFavorites, database.TableBlockedVideos:
	default:
		return nil, fmt.Errorf("unsupported report table: %s", table)
	}

	query := `
		SELECT o.video_id, v.title, COUNT(*) AS total
		FROM ` + table + ` o
		LEFT JOIN videos v ON v.id = o.video_id
		GROUP BY o.video_id, v.title
		ORDER BY total DESC, o.video_id ASC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top videos: %w", err)
	}
	defer rows.Close()

	counts := []VideoCount{}
	for rows.Next() {
		var c VideoCount
		if err := rows.Scan(&c.VideoID, &c.Title, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top videos: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByCategory counts videos per category ID with the category name when it exists
func (r *ReportRepository) CountByCategory(ctx context.Context) ([]GroupCount, error) {
	query := `
		SELECT v.category_id, c.name, COUNT(*) AS total
		FROM videos v
		LEFT JOIN categories c ON c.id = v.category_id
		GROUP BY v.category_id, c.name
		ORDER BY total DESC, v.category_id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos by category: %w", err)
	}
	defer rows.Close()

	counts := []GroupCount{}
	for rows.Next() {
		var c GroupCount
		var categoryID int64
		if err := rows.Scan(&categoryID, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		c.Key = fmt.Sprint(categoryID)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountBySource counts videos per source type
func (r *ReportRepository) CountBySource(ctx context.Context) ([]GroupCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_type, COUNT(*) AS total
		FROM videos
		GROUP BY source_type
		ORDER BY total DESC, source_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos by source: %w", err)
	}
	defer rows.Close()

	counts := []GroupCount{}
	for rows.Next() {
		var c GroupCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
