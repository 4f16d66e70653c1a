package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete library backup structure
type BackupData struct {
	Version      string           `json:"version"`
	ExportedAt   time.Time        `json:"exported_at"`
	DatabaseType string           `json:"database_type"`
	Parents      []ParentBackup   `json:"parents"`
	Categories   []CategoryBackup `json:"categories"`
	Kids         []KidBackup      `json:"kids"`
	Videos       []VideoBackup    `json:"videos"`
	Favorites    []OverlayBackup  `json:"favorites"`
	Blocked      []OverlayBackup  `json:"blocked"`
	History      []HistoryBackup  `json:"history"`
}

// ParentBackup represents a parent record for backup
type ParentBackup struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	PIN          string     `json:"pin"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CategoryBackup represents a content category for backup
type CategoryBackup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// KidBackup represents a kid profile for backup
type KidBackup struct {
	ID            int64     `json:"id"`
	ParentID      int64     `json:"parent_id"`
	Name          string    `json:"name"`
	AgeCategoryID int64     `json:"age_category_id"`
	Avatar        string    `json:"avatar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VideoBackup represents a catalog entry for backup
type VideoBackup struct {
	ID            int64     `json:"id"`
	VideoURL      string    `json:"video_url"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	Title         string    `json:"title"`
	AgeCategoryID int64     `json:"age_category_id"`
	CategoryID    int64     `json:"category_id"`
	SourceType    string    `json:"source_type"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// OverlayBackup represents a favorite or block row for backup
type OverlayBackup struct {
	KidID     int64     `json:"kid_id"`
	VideoID   int64     `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryBackup represents a watch history row for backup
type HistoryBackup struct {
	ID              int64     `json:"id"`
	KidID           int64     `json:"kid_id"`
	VideoID         int64     `json:"video_id"`
	ProgressSeconds int       `json:"progress_seconds"`
	LastWatchedAt   time.Time `json:"last_watched_at"`
}

// BackupService handles library export and restore
type BackupService struct {
	db  *database.DB
	log *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *zap.Logger) *BackupService {
	return &BackupService{db: db, log: log.With(zap.String("component", "backup"))}
}

// ExportToWriter writes a JSON backup of every library table to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		steps := []struct {
			name string
			fn   func(context.Context, database.DBTX, *BackupData) error
		}{
			{"parents", exportParents},
			{"categories", exportCategories},
			{"kids", exportKids},
			{"videos", exportVideos},
			{"favorites", exportFavorites},
			{"blocked videos", exportBlocked},
			{"history", exportHistory},
		}
		for _, step := range steps {
			if err := step.fn(ctx, tx, backup); err != nil {
				return fmt.Errorf("failed to export %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("library exported",
		zap.Int("parents", len(backup.Parents)),
		zap.Int("kids", len(backup.Kids)),
		zap.Int("videos", len(backup.Videos)),
		zap.Int("history", len(backup.History)))
	return backup, nil
}

// ImportFromReader replaces the library with the backup read from r. The
// restore runs in one transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.log.Info("importing library",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.String("source_database", backup.DatabaseType))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := clearLibrary(ctx, tx); err != nil {
			return err
		}

		steps := []struct {
			name string
			fn   func(context.Context, database.DBTX, *BackupData) error
		}{
			{"parents", importParents},
			{"categories", importCategories},
			{"kids", importKids},
			{"videos", importVideos},
			{"favorites", importFavorites},
			{"blocked videos", importBlocked},
			{"history", importHistory},
		}
		for _, step := range steps {
			if err := step.fn(ctx, tx, &backup); err != nil {
				return fmt.Errorf("failed to import %s: %w", step.name, err)
			}
		}
		return resetSequences(ctx, tx)
	}, database.TableParents, database.TableCategories, database.TableKids, database.TableVideos,
		database.TableFavorites, database.TableBlockedVideos, database.TableWatchHistory)
	if err != nil {
		return nil, err
	}

	s.log.Info("library import completed")
	return &backup, nil
}

// clearLibrary empties the library tables children first
func clearLibrary(ctx context.Context, q database.DBTX) error {
	tables := []string{
		database.TableWatchHistory, database.TableBlockedVideos, database.TableFavorites,
		database.TableVideos, database.TableKids, database.TableCategories, database.TableParents,
	}
	for _, table := range tables {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// resetSequences moves postgres serial sequences past the imported IDs
func resetSequences(ctx context.Context, q database.DBTX) error {
	if q.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{database.TableParents, database.TableCategories, database.TableKids, database.TableVideos, database.TableWatchHistory} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := q.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func exportParents(ctx context.Context, q database.DBTX, backup *BackupData) error {
	rows, err := q.QueryContext(ctx, "SELECT id, full_name, email, password_hash, pin, is_active, last_login_at, created_at, updated_at FROM parents ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ParentBackup
		var lastLogin sql.NullTime
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.PasswordHash, &p.PIN, &p.IsActive, &lastLogin, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			p.LastLoginAt = &t
		}
		backup.Parents = append(backup.Parents, p)
	}
	return rows.Err()
}

func exportCategories(ctx context.Context, q database.DBTX, backup *BackupData) error {
	rows, err := q.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryBackup
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return err
		}
		backup.Categories = append(backup.Categories, c)
	}
	return rows.Err()
}

func exportKids(ctx context.Context, q database.DBTX, backup *BackupData) error {
	rows, err := q.QueryContext(ctx, "SELECT id, parent_id, name, age_category_id, avatar, created_at, updated_at FROM kids ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k KidBackup
		if err := rows.Scan(&k.ID, &k.ParentID, &k.Name, &k.AgeCategoryID, &k.Avatar, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return err
		}
		backup.Kids = append(backup.Kids, k)
	}
	return rows.Err()
}

func exportVideos(ctx context.Context, q database.DBTX, backup *BackupData) error {
	rows, err := q.QueryContext(ctx, "SELECT id, video_url, thumbnail_url, title, age_category_id, category_id, source_type, status, created_at FROM videos ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VideoBackup
		if err := rows.Scan(&v.ID, &v.VideoURL, &v.ThumbnailURL, &v.Title, &v.AgeCategoryID, &v.CategoryID, &v.SourceType, &v.Status, &v.CreatedAt); err != nil {
			return err
		}
		backup.Videos = append(backup.Videos, v)
	}
	return rows.Err()
}

func exportOverlay(ctx context.Context, q database.DBTX, table string) ([]OverlayBackup, error) {
	rows, err := q.QueryContext(ctx, "SELECT kid_id, video_id, created_at FROM "+table+" ORDER BY kid_id, video_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverlayBackup
	for rows.Next() {
		var o OverlayBackup
		if err := rows.Scan(&o.KidID, &o.VideoID, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func exportFavorites(ctx context.Context, q database.DBTX, backup *BackupData) error {
	favorites, err := exportOverlay(ctx, q, database.TableFavorites)
	backup.Favorites = favorites
	return err
}

func exportBlocked(ctx context.Context, q database.DBTX, backup *BackupData) error {
	blocked, err := exportOverlay(ctx, q, database.TableBlockedVideos)
	backup.Blocked = blocked
	return err
}

func exportHistory(ctx context.Context, q database.DBTX, backup *BackupData) error {
	rows, err := q.QueryContext(ctx, "SELECT id, kid_id, video_id, progress_seconds, last_watched_at FROM watch_history ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h HistoryBackup
		if err := rows.Scan(&h.ID, &h.KidID, &h.VideoID, &h.ProgressSeconds, &h.LastWatchedAt); err != nil {
			return err
		}
		backup.History = append(backup.History, h)
	}
	return rows.Err()
}

func importParents(ctx context.Context, q database.DBTX, backup *BackupData) error {
	for _, p := range backup.Parents {
		var lastLogin interface{}
		if p.LastLoginAt != nil {
			lastLogin = p.LastLoginAt.UTC()
		}
		_, err := q.ExecContext(ctx,
			"INSERT INTO parents (id, full_name, email, password_hash, pin, is_active, last_login_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.FullName, p.Email, p.PasswordHash, p.PIN, p.IsActive, lastLogin, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("parent %d: %w", p.ID, err)
		}
	}
	return nil
}

func importCategories(ctx context.Context, q database.DBTX, backup *BackupData) error {
	for _, c := range backup.Categories {
		if _, err := q.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name); err != nil {
			return fmt.Errorf("category %d: %w", c.ID, err)
		}
	}
	return nil
}

func importKids(ctx context.Context, q database.DBTX, backup *BackupData) error {
	for _, k := range backup.Kids {
		_, err := q.ExecContext(ctx,
			"INSERT INTO kids (id, parent_id, name, age_category_id, avatar, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			k.ID, k.ParentID, k.Name, k.AgeCategoryID, k.Avatar, k.CreatedAt.UTC(), k.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("kid %d: %w", k.ID, err)
		}
	}
	return nil
}

func importVideos(ctx context.Context, q database.DBTX, backup *BackupData) error {
	for _, v := range backup.Videos {
		_, err := q.ExecContext(ctx,
			"INSERT INTO videos (id, video_url, thumbnail_url, title, age_category_id, category_id, source_type, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			v.ID, v.VideoURL, v.ThumbnailURL, v.Title, v.AgeCategoryID, v.CategoryID, v.SourceType, v.Status, v.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("video %d: %w", v.ID, err)
		}
	}
	return nil
}

func importOverlay(ctx context.Context, q database.DBTX, table string, rows []OverlayBackup) error {
	for _, o := range rows {
		_, err := q.ExecContext(ctx, "INSERT INTO "+table+" (kid_id, video_id, created_at) VALUES (?, ?, ?)",
			o.KidID, o.VideoID, o.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("kid %d video %d: %w", o.KidID, o.VideoID, err)
		}
	}
	return nil
}

func importFavorites(ctx context.Context, q database.DBTX, backup *BackupData) error {
	return importOverlay(ctx, q, database.TableFavorites, backup.Favorites)
}

func importBlocked(ctx context.Context, q database.DBTX, backup *BackupData) error {
	return importOverlay(ctx, q, database.TableBlockedVideos, backup.Blocked)
}

func importHistory(ctx context.Context, q database.DBTX, backup *BackupData) error {
	for _, h := range backup.History {
		_, err := q.ExecContext(ctx,
			"INSERT INTO watch_history (id, kid_id, video_id, progress_seconds, last_watched_at) VALUES (?, ?, ?, ?, ?)",
			h.ID, h.KidID, h.VideoID, h.ProgressSeconds, h.LastWatchedAt.UTC())
		if err != nil {
			return fmt.Errorf("history %d: %w", h.ID, err)
		}
	}
	return nil
}
