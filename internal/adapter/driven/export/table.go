// Package export writes reports to external sinks: JSON documents,
// spreadsheets and CSV files.
package export

import (
	"strconv"
	"strings"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// Table is a flat, sink-independent view of a report: one header row plus
// one row per record.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// CartographyTable flattens a cartography into one row per (context, lot).
func CartographyTable(c *model.Cartography) Table {
	t := Table{
		Name:   "Cartography",
		Header: []string{"Context", "Lot", "Version", "Category", "Status", "Delivery date", "Mantis"},
	}
	if c == nil {
		return t
	}
	for _, ctx := range c.Contexts {
		for _, lot := range ctx.Lots {
			e := lot.Entry
			t.Rows = append(t.Rows, []string{ctx.Name, lot.Name, e.Version, e.Category, e.Status, e.DeliveryDate, e.Mantis})
		}
	}
	return t
}

// DelayTable flattens delay buckets into one row per month.
func DelayTable(buckets []model.DelayBucket) Table {
	t := Table{
		Name:   "Delays",
		Header: []string{"Month", "Label", "OK", "KO", "Late tickets"},
	}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []string{
			b.Month, b.Label, strconv.Itoa(b.OK), strconv.Itoa(b.KO), strings.Join(b.KOMantis, ", "),
		})
	}
	return t
}
