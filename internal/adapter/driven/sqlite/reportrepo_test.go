package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

func TestReportRepo_CartographyRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepo(db)
	ctx := context.Background()

	app := seedInstallation(t, db, model.Installation{
		Mantis: "0001", Status: model.StatusDelivered, Category: model.CategoryApplication,
		DeliveryDate: date(2025, 3, 10),
	})
	seedLot(t, db, app, "0001", "core", "1.9", false)
	seedLot(t, db, app, "0001", "core", "1.10", false)
	seedLot(t, db, app, "0001", "billing", "2", true)

	itf := seedInstallation(t, db, model.Installation{
		Mantis: "0002", Status: model.StatusValidatedProd, Category: model.CategoryInterface,
	})
	seedLot(t, db, itf, "0002", "gateway", "4", false)

	// Not delivered: excluded by the default status set.
	planned := seedInstallation(t, db, model.Installation{
		Mantis: "0003", Status: model.StatusPlanned, Category: model.CategoryApplication,
	})
	seedLot(t, db, planned, "0003", "core", "9", false)

	// Uncategorized: has no context.
	bare := seedInstallation(t, db, model.Installation{Mantis: "0004", Status: model.StatusDelivered})
	seedLot(t, db, bare, "0004", "core", "7", false)

	rows, err := repo.CartographyRows(ctx, model.CartographyQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Ordered by category name then lot name.
	assert.Equal(t, "Application", rows[0].CategoryName)
	assert.Equal(t, "billing", rows[0].LotName)
	assert.Equal(t, "core", rows[1].LotName)
	assert.Equal(t, "core", rows[2].LotName)
	assert.Equal(t, "Interfaces", rows[3].CategoryName)

	// Both core rows carry the max version of the (installation, lot) pair.
	assert.Equal(t, "1.10", rows[1].Version)
	assert.Equal(t, "1.10", rows[2].Version)
	assert.Equal(t, date(2025, 3, 10), rows[1].DeliveryDate)
	assert.Equal(t, model.StatusDelivered, rows[1].Status)
	assert.Equal(t, "0001", rows[1].Mantis)
}

func TestReportRepo_CartographyRowsFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepo(db)
	ctx := context.Background()

	app := seedInstallation(t, db, model.Installation{
		Mantis: "0001", Status: model.StatusDelivered, Category: model.CategoryApplication,
	})
	seedLot(t, db, app, "0001", "core", "1", false)
	itf := seedInstallation(t, db, model.Installation{
		Mantis: "0002", Status: model.StatusValidatedTest, Category: model.CategoryInterface,
	})
	seedLot(t, db, itf, "0002", "gateway", "4", false)

	rows, err := repo.CartographyRows(ctx, model.CartographyQuery{Category: model.CategoryInterface})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "gateway", rows[0].LotName)

	rows, err = repo.CartographyRows(ctx, model.CartographyQuery{Statuses: []model.Status{model.StatusDelivered}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "core", rows[0].LotName)

	rows, err = repo.CartographyRows(ctx, model.CartographyQuery{Category: model.CategoryBatch})
	require.NoError(t, err)
	assert.Empty(t, rows, "no match is an empty result, not an error")
}

func TestReportRepo_DeliveredInstallations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepo(db)
	ctx := context.Background()

	seedInstallation(t, db, model.Installation{
		Mantis: "0001", Status: model.StatusDelivered,
		DesiredDate: date(2025, 3, 15), DeliveryDate: date(2025, 3, 10),
	})
	seedInstallation(t, db, model.Installation{
		Mantis: "0002", Status: model.StatusValidatedPreprod,
		DesiredDate: date(2025, 3, 15), DeliveryDate: date(2025, 4, 2),
	})
	seedInstallation(t, db, model.Installation{Mantis: "0003", Status: model.StatusInProgress})

	got, err := repo.DeliveredInstallations(ctx, model.DelayQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0001", got[0].Mantis)
	assert.Equal(t, date(2025, 3, 15), got[0].DesiredDate)
	assert.Equal(t, date(2025, 3, 10), got[0].DeliveryDate)

	got, err = repo.DeliveredInstallations(ctx, model.DelayQuery{From: date(2025, 4, 1), To: date(2025, 4, 30)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0002", got[0].Mantis)
}

func TestReportRepo_InstallationLotRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepo(db)
	ctx := context.Background()

	first := seedInstallation(t, db, model.Installation{Mantis: "0001", Description: "first"})
	seedLot(t, db, first, "0001", "billing", "1", true)

	second := seedInstallation(t, db, model.Installation{Mantis: "0002", Description: "second"})
	gatewayID := seedLot(t, db, second, "0002", "gateway", "3", false)
	// A later record for the same lot and ticket wins.
	artefacts := 7
	latestID := seedVersion(t, db, gatewayID, "0002", true, &artefacts)
	seedLink(t, db, second, "core", "2")

	seedInstallation(t, db, model.Installation{Mantis: "0003", Description: "no lots"})

	rows, err := repo.InstallationLotRows(ctx, model.ExportQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "0001", rows[0].Mantis)
	assert.Equal(t, "billing", rows[0].LotName)
	require.NotNil(t, rows[0].IsNewLot)
	assert.True(t, *rows[0].IsNewLot)

	assert.Equal(t, "core", rows[1].LotName)
	assert.Nil(t, rows[1].VersionID, "lot without version record")
	assert.Nil(t, rows[1].IsNewLot)

	assert.Equal(t, "gateway", rows[2].LotName)
	require.NotNil(t, rows[2].VersionID)
	assert.Equal(t, latestID, *rows[2].VersionID)
	require.NotNil(t, rows[2].ArtefactNumber)
	assert.Equal(t, 7, *rows[2].ArtefactNumber)

	assert.Equal(t, "0003", rows[3].Mantis)
	assert.Zero(t, rows[3].LotID)

	filtered, err := repo.InstallationLotRows(ctx, model.ExportQuery{Mantis: "0001"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "first", filtered[0].Description)
}

func TestReportRepo_MalformedStoredDates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepo(db)
	ctx := context.Background()

	id := seedInstallation(t, db, model.Installation{
		Mantis: "0001", Status: model.StatusDelivered, Category: model.CategoryApplication,
		DesiredDate: date(2025, 3, 20),
	})
	seedLot(t, db, id, "0001", "core", "1", true)
	_, err := db.Writer.ExecContext(ctx, `UPDATE installations SET delivery_date = '15/03/2025' WHERE id = ?`, id)
	require.NoError(t, err)

	carto, err := repo.CartographyRows(ctx, model.CartographyQuery{})
	require.NoError(t, err)
	require.Len(t, carto, 1)
	assert.True(t, carto[0].DeliveryDate.IsZero())
	assert.Equal(t, "15/03/2025", carto[0].DeliveryDateRaw)

	delivered, err := repo.DeliveredInstallations(ctx, model.DelayQuery{})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.False(t, delivered[0].HasDeliveryDates(), "an unparsable date counts as missing")
	assert.Equal(t, date(2025, 3, 20), delivered[0].DesiredDate)

	rows, err := repo.InstallationLotRows(ctx, model.ExportQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.RawDates{Delivery: "15/03/2025"}, rows[0].RawDates)
	assert.Equal(t, date(2025, 3, 20), rows[0].DesiredDate)

	inst, err := NewInstallationRepo(db).GetByMantis(ctx, "0001")
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.True(t, inst.DeliveryDate.IsZero())
}
