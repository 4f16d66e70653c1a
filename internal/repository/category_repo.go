package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
)

// CategoryRepository handles content categories and age categories
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListCategories returns all content categories ordered by ID
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID retrieves a category, or nil if there is none
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category
func (r *CategoryRepository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	id, err := r.db.ExecReturningID(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	r.db.Notify(database.TableCategories)
	return &models.Category{ID: id, Name: name}, nil
}

// UpdateCategory renames a category
func (r *CategoryRepository) UpdateCategory(ctx context.Context, id int64, name string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	r.db.Notify(database.TableCategories)
	return nil
}

// DeleteCategory removes a category. Its videos and their overlays cascade.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	r.db.Notify(database.TableCategories, database.TableVideos,
		database.TableFavorites, database.TableBlockedVideos, database.TableWatchHistory)
	return nil
}

// ListAgeCategories returns the age bands ordered from youngest to oldest
func (r *CategoryRepository) ListAgeCategories(ctx context.Context) ([]models.AgeCategory, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM age_categories ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query age categories: %w", err)
	}
	defer rows.Close()

	ages := []models.AgeCategory{}
	for rows.Next() {
		var a models.AgeCategory
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan age category: %w", err)
		}
		ages = append(ages, a)
	}
	return ages, rows.Err()
}

// AgeCategoryExists reports whether the age category ID is known
func (r *CategoryRepository) AgeCategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM age_categories WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check age category: %w", err)
	}
	return count > 0, nil
}
