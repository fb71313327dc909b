package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"event-registration-platform/internal/models"
)

// CategoryRepository handles category data operations
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, slug, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at FROM categories WHERE id = $1", id).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// GetBySlugOrName resolves a category from a slug or a case-insensitive name
func (r *CategoryRepository) GetBySlugOrName(ctx context.Context, identifier string) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at FROM categories
		WHERE slug = $1 OR LOWER(name) = LOWER($1)`, identifier).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, name, slug string) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug, created_at`, name, slug).
		Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}
