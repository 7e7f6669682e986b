package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CategoryStore = (*CategoryRepo)(nil)

// CategoryRepo is the SQLite implementation of the CategoryStore port interface.
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new CategoryRepo backed by the given DB.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// ListAll returns all categories ordered by display name.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	const query = `SELECT code, name FROM categories ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var code string
		if err := rows.Scan(&code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Code = model.CategoryCode(code)
		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return cats, nil
}

// GetByCode returns the category with the given code, or nil, nil if unknown.
func (r *CategoryRepo) GetByCode(ctx context.Context, code model.CategoryCode) (*model.Category, error) {
	const query = `SELECT code, name FROM categories WHERE code = ?`

	var c model.Category
	var raw string
	err := r.db.Reader.QueryRowContext(ctx, query, string(code)).Scan(&raw, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", code, err)
	}
	c.Code = model.CategoryCode(raw)
	return &c, nil
}
