package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// Sentinel errors returned by InstallationStore implementations.
var (
	// ErrInstallationNotFound indicates no installation carries the requested Mantis id.
	ErrInstallationNotFound = errors.New("installation not found")

	// ErrInstallationExists indicates an installation with the same Mantis id already exists.
	ErrInstallationExists = errors.New("installation already exists")
)

// InstallationStore defines the driven port for installation persistence.
// Create returns ErrInstallationExists on a duplicate Mantis id.
// UpdateProgress returns ErrInstallationNotFound when no row matches.
type InstallationStore interface {
	Create(ctx context.Context, inst model.Installation) (int64, error)
	// GetByMantis returns nil, nil when the installation does not exist.
	GetByMantis(ctx context.Context, mantis string) (*model.Installation, error)
	// ListAll returns every installation ordered by Mantis id.
	ListAll(ctx context.Context) ([]model.Installation, error)
	// UpdateProgress sets the status and, when deliveryDate is non-zero, the
	// actual delivery date.
	UpdateProgress(ctx context.Context, mantis string, status model.Status, deliveryDate time.Time) error
}
