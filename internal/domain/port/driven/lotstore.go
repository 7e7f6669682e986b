package driven

import (
	"context"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// LotStore defines the driven port for lots, their links to installations and
// their version records.
type LotStore interface {
	// AttachVersion records that an installation delivers a lot version, as a
	// single unit of work: it ensures the (name, version) lot exists, links it
	// to the installation, records a LotVersion chained to the latest earlier
	// record of the same lot name, and recomputes the installation counters.
	// Nothing is kept when a step fails. Returns ErrInstallationNotFound when
	// no installation carries d.Mantis.
	AttachVersion(ctx context.Context, d model.LotDelivery) (*model.LotVersion, error)
	// ListByInstallation returns the lots attached to an installation, ordered by name.
	ListByInstallation(ctx context.Context, installationID int64) ([]model.Lot, error)
}
