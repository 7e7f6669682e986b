package application

import (
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// BuildCartography folds ordered cartography rows into the context → lot →
// entry report. Contexts and lots keep first-seen order. For each (context,
// lot) pair the first row is always stored; a later row replaces it only when
// its version is strictly greater, so equal versions keep the first-seen
// entry. Contexts without rows never appear.
func BuildCartography(rows []model.CartographyRow) *model.Cartography {
	carto := &model.Cartography{}

	for _, row := range rows {
		current, ok := carto.Get(row.CategoryName, row.LotName)
		if ok && model.CompareVersions(row.Version, current.Version) <= 0 {
			continue
		}
		carto.Set(row.CategoryName, row.LotName, toCartographyEntry(row))
	}

	return carto
}

func toCartographyEntry(row model.CartographyRow) model.CartographyEntry {
	return model.CartographyEntry{
		Version:      row.Version,
		Category:     string(row.CategoryCode),
		Status:       row.Status.Label(),
		DeliveryDate: dateOrRaw(row.DeliveryDate, row.DeliveryDateRaw),
		Mantis:       row.Mantis,
	}
}
