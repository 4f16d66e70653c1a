package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
)

// ParentRepository handles database operations for parent accounts
type ParentRepository struct {
	db *database.DB
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db *database.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

const parentColumns = "id, full_name, email, password_hash, pin, is_active, last_login_at, created_at, updated_at"

// CreateParent inserts a new, active parent account
func (r *ParentRepository) CreateParent(ctx context.Context, fullName, email, passwordHash, pin string) (*models.Parent, error) {
	query := `
		INSERT INTO parents (full_name, email, password_hash, pin, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, fullName, email, passwordHash, pin, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}
	r.db.Notify(database.TableParents)

	now := time.Now()
	return &models.Parent{
		ID:           id,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		PIN:          pin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetParentByID retrieves a parent by ID, or nil if there is none
func (r *ParentRepository) GetParentByID(ctx context.Context, id int64) (*models.Parent, error) {
	query := "SELECT " + parentColumns + " FROM parents WHERE id = ?"
	parent, err := scanParent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return parent, nil
}

// GetParentByEmail retrieves a parent by email address, or nil if there is none
func (r *ParentRepository) GetParentByEmail(ctx context.Context, email string) (*models.Parent, error) {
	query := "SELECT " + parentColumns + " FROM parents WHERE email = ?"
	parent, err := scanParent(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent by email: %w", err)
	}
	return parent, nil
}

// EmailExists reports whether an account already uses the email
func (r *ParentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parents WHERE email = ?", email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// ListParents returns every parent ordered by full name
func (r *ParentRepository) ListParents(ctx context.Context) ([]models.Parent, error) {
	query := "SELECT " + parentColumns + " FROM parents ORDER BY full_name ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	parents := []models.Parent{}
	for rows.Next() {
		parent, err := scanParent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		parents = append(parents, *parent)
	}
	return parents, rows.Err()
}

// CountParents returns the number of parent accounts
func (r *ParentRepository) CountParents(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count parents: %w", err)
	}
	return count, nil
}

// UpdateLastLogin stamps a successful login
func (r *ParentRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE parents SET last_login_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	r.db.Notify(database.TableParents)
	return nil
}

// UpdatePIN replaces the parent's PIN
func (r *ParentRepository) UpdatePIN(ctx context.Context, id int64, pin string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE parents SET pin = ?, updated_at = ? WHERE id = ?", pin, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	r.db.Notify(database.TableParents)
	return nil
}

// SetActive enables or disables a parent account
func (r *ParentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE parents SET is_active = ?, updated_at = ? WHERE id = ?", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update parent status: %w", err)
	}
	r.db.Notify(database.TableParents)
	return nil
}

// DeleteParent removes a parent. Kids and their overlays cascade.
func (r *ParentRepository) DeleteParent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM parents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete parent: %w", err)
	}
	r.db.Notify(database.TableParents, database.TableKids,
		database.TableFavorites, database.TableBlockedVideos, database.TableWatchHistory)
	return nil
}

func scanParent(row scanner) (*models.Parent, error) {
	p := &models.Parent{}
	var lastLogin sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.PasswordHash,
		&p.PIN,
		&p.IsActive,
		&lastLogin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLoginAt = &t
	}
	return p, nil
}
