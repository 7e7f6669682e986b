package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

func sampleCartography() *model.Cartography {
	c := &model.Cartography{}
	c.Set("Application", "core", model.CartographyEntry{Version: "5", Category: "APP", Status: "Delivered", DeliveryDate: "2025-03-10", Mantis: "0001"})
	c.Set("Application", "billing", model.CartographyEntry{Version: "2", Category: "APP", Status: "Delivered", Mantis: "0002"})
	c.Set("Interfaces", "gateway", model.CartographyEntry{Version: "1.10", Category: "ITF", Status: "Validated (production)", Mantis: "0003"})
	return c
}

func sampleBuckets() []model.DelayBucket {
	return []model.DelayBucket{
		{Month: "2025-03", Label: "mars 2025", OK: 3, KO: 2, KOMantis: []string{"0004", "0005"}},
		{Month: "2025-04", Label: "avril 2025", OK: 1, KOMantis: []string{}},
	}
}

func TestCartographyTable(t *testing.T) {
	table := CartographyTable(sampleCartography())

	assert.Equal(t, "Cartography", table.Name)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"Application", "core", "5", "APP", "Delivered", "2025-03-10", "0001"}, table.Rows[0])
	assert.Equal(t, "gateway", table.Rows[2][1])

	assert.Empty(t, CartographyTable(nil).Rows)
}

func TestDelayTable(t *testing.T) {
	table := DelayTable(sampleBuckets())

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2025-03", "mars 2025", "3", "2", "0004, 0005"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleCartography()))

	assert.Equal(t, "5", gjson.GetBytes(buf.Bytes(), "Application.core.version").String())
	assert.Equal(t, "0003", gjson.GetBytes(buf.Bytes(), "Interfaces.gateway.mantis").String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, DelayTable(sampleBuckets())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per bucket")
	assert.Equal(t, []string{"Month", "Label", "OK", "KO", "Late tickets"}, records[0])
	assert.Equal(t, "0004, 0005", records[1][4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, CartographyTable(sampleCartography()), DelayTable(sampleBuckets())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{"Cartography", "Delays"}, f.GetSheetList())

	rows, err := f.GetRows("Cartography")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per record")
	assert.Equal(t, "Context", rows[0][0])
	assert.Equal(t, []string{"Interfaces", "gateway", "1.10", "ITF", "Validated (production)", "", "0003"}, rows[3])

	delays, err := f.GetRows("Delays")
	require.NoError(t, err)
	require.Len(t, delays, 3)
	assert.Equal(t, "avril 2025", delays[2][1])
}

func TestWriteXLSX_NoTables(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteXLSX(&buf), ErrNoTables)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet3", sheetName("", 2))
	assert.Len(t, sheetName("A very long report name that exceeds the limit", 0), maxSheetName)

	accented := sheetName("Répartition détaillée des écarts de livraison", 0)
	assert.True(t, utf8.ValidString(accented))
	assert.Equal(t, maxSheetName, utf8.RuneCountInString(accented))
	assert.Equal(t, "Répartition détaillée des écart", accented)
}

func TestWriteXLSX_AccentedLongSheetName(t *testing.T) {
	table := DelayTable(sampleBuckets())
	table.Name = "Délais de livraison équipe intégration été"

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, "Délais de livraison équipe inté", sheets[0])
}
