package application

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// Validation errors returned before any store is queried.
var (
	// ErrInvalidStatus indicates a status filter outside the delivered/validated codes.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownCategory indicates a category code outside the enumerated set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidInstallation indicates an installation that cannot be stored as given.
	ErrInvalidInstallation = errors.New("invalid installation")
)

// reportStatuses validates a report status filter. An empty set expands to
// the four delivered/validated codes.
func reportStatuses(statuses []model.Status) ([]model.Status, error) {
	if len(statuses) == 0 {
		return model.DeliveredStatuses(), nil
	}
	for _, s := range statuses {
		if !s.IsDelivered() {
			return nil, fmt.Errorf("%w: %q is not a delivered/validated status", ErrInvalidStatus, s)
		}
	}
	return statuses, nil
}

// checkCategory accepts an empty code or one of the enumerated codes.
func checkCategory(code model.CategoryCode) error {
	if code == "" || code.IsKnown() {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, code)
}
