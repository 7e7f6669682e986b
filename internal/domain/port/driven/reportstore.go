package driven

import (
	"context"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// ReportStore defines the read-only driven port feeding the reports. Queries
// that match nothing return an empty result, never an error.
type ReportStore interface {
	// CartographyRows returns installation × lot rows for the query, each
	// annotated with the maximum version for its (installation, lot name)
	// pair, ordered by category name then lot name.
	CartographyRows(ctx context.Context, q model.CartographyQuery) ([]model.CartographyRow, error)
	// DeliveredInstallations returns installations in the status set whose
	// delivery date falls within the optional range.
	DeliveredInstallations(ctx context.Context, q model.DelayQuery) ([]model.Installation, error)
	// InstallationLotRows returns installation × lot rows with the latest
	// version record per (lot, Mantis), ordered by installation id then lot name.
	InstallationLotRows(ctx context.Context, q model.ExportQuery) ([]model.InstallationLotRow, error)
}
