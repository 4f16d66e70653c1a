package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
)

// KidRepository handles database operations for kid profiles
type KidRepository struct {
	db *database.DB
}

// NewKidRepository creates a new kid repository
func NewKidRepository(db *database.DB) *KidRepository {
	return &KidRepository{db: db}
}

const kidColumns = "id, parent_id, name, age_category_id, avatar, created_at, updated_at"

// CreateKid creates a new kid profile
func (r *KidRepository) CreateKid(ctx context.Context, parentID int64, name string, ageCategoryID int64, avatar string) (*models.Kid, error) {
	query := "INSERT INTO kids (parent_id, name, age_category_id, avatar) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, parentID, name, ageCategoryID, avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to create kid: %w", err)
	}
	r.db.Notify(database.TableKids)

	now := time.Now()
	return &models.Kid{
		ID:            id,
		ParentID:      parentID,
		Name:          name,
		AgeCategoryID: ageCategoryID,
		Avatar:        avatar,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetKidByID retrieves a kid by ID, or nil if there is none
func (r *KidRepository) GetKidByID(ctx context.Context, kidID int64) (*models.Kid, error) {
	query := "SELECT " + kidColumns + " FROM kids WHERE id = ?"
	kid, err := scanKid(r.db.QueryRowContext(ctx, query, kidID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	return kid, nil
}

// GetParentKids retrieves all kids of a parent in creation order
func (r *KidRepository) GetParentKids(ctx context.Context, parentID int64) ([]models.Kid, error) {
	query := "SELECT " + kidColumns + " FROM kids WHERE parent_id = ? ORDER BY id ASC"
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query kids: %w", err)
	}
	defer rows.Close()

	kids := []models.Kid{}
	for rows.Next() {
		kid, err := scanKid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kid: %w", err)
		}
		kids = append(kids, *kid)
	}
	return kids, rows.Err()
}

// UpdateKid updates a kid's name, age category and avatar
func (r *KidRepository) UpdateKid(ctx context.Context, kidID int64, name string, ageCategoryID int64, avatar string) error {
	query := "UPDATE kids SET name = ?, age_category_id = ?, avatar = ?, updated_at = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, name, ageCategoryID, avatar, time.Now().UTC(), kidID)
	if err != nil {
		return fmt.Errorf("failed to update kid: %w", err)
	}
	r.db.Notify(database.TableKids)
	return nil
}

// DeleteKid removes a kid. Favorites, blocks and history cascade.
func (r *KidRepository) DeleteKid(ctx context.Context, kidID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kids WHERE id = ?", kidID)
	if err != nil {
		return fmt.Errorf("failed to delete kid: %w", err)
	}
	r.db.Notify(database.TableKids, database.TableFavorites, database.TableBlockedVideos, database.TableWatchHistory)
	return nil
}

func scanKid(row scanner) (*models.Kid, error) {
	kid := &models.Kid{}
	err := row.Scan(
		&kid.ID,
		&kid.ParentID,
		&kid.Name,
		&kid.AgeCategoryID,
		&kid.Avatar,
		&kid.CreatedAt,
		&kid.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return kid, nil
}
