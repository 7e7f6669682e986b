package application

import (
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// ComposeInstallations groups installation × lot rows by installation id,
// emitting one export per installation in first-seen order. Rows with a zero
// LotID carry no lot and only contribute the installation itself.
//
// IsNewVersion is the negation of IsNewLot: a touched lot that is not new is
// treated as a version bump. A lot without a version record has a nil
// IsNewLot and IsNewVersion false.
func ComposeInstallations(rows []model.InstallationLotRow) []model.InstallationExport {
	exports := make([]model.InstallationExport, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.InstallationID]
		if !ok {
			exports = append(exports, model.InstallationExport{
				ID:          row.InstallationID,
				Mantis:      row.Mantis,
				Description: row.Description,
				User:        row.Requester,
				Priority:    row.Priority,
				Status:      string(row.Status),
				Category:    string(row.Category),
				StartDate:   datePtrOrRaw(row.StartDate, row.RawDates.Start),
				DesiredDate: datePtrOrRaw(row.DesiredDate, row.RawDates.Desired),
				EndDate:     datePtrOrRaw(row.DeliveryDate, row.RawDates.Delivery),
				Lots:        []model.LotExport{},
			})
			i = len(exports) - 1
			index[row.InstallationID] = i
		}

		if row.LotID == 0 {
			continue
		}

		exports[i].Lots = append(exports[i].Lots, model.LotExport{
			ID:             row.LotID,
			Name:           row.LotName,
			Version:        row.LotVersion,
			VersionID:      row.VersionID,
			IsNewLot:       row.IsNewLot,
			IsNewVersion:   row.IsNewLot != nil && !*row.IsNewLot,
			ArtefactNumber: row.ArtefactNumber,
			PreviousLotID:  row.PreviousLotID,
		})
	}

	return exports
}
