package driven

import (
	"context"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// CategoryStore defines the driven port for the category reference table.
type CategoryStore interface {
	// ListAll returns all categories ordered by display name.
	ListAll(ctx context.Context) ([]model.Category, error)
	// GetByCode returns nil, nil when the code is unknown.
	GetByCode(ctx context.Context, code model.CategoryCode) (*model.Category, error)
}
