package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReportStore = (*ReportRepo)(nil)

// ReportRepo is the read-only SQLite implementation of the ReportStore port.
// Queries run on the reader pool and are mapped with sqlx.
type ReportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new ReportRepo backed by the given DB.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db.readerx()}
}

type cartographyRecord struct {
	InstallationID int64          `db:"installation_id"`
	Mantis         string         `db:"mantis"`
	Status         string         `db:"status"`
	DeliveryDate   sql.NullString `db:"delivery_date"`
	CategoryCode   string         `db:"category_code"`
	CategoryName   string         `db:"category_name"`
	LotName        string         `db:"lot_name"`
	Version        string         `db:"version"`
}

// CartographyRows returns the categorized installation × lot rows matching
// the query. Uncategorized installations have no context and are left out.
func (r *ReportRepo) CartographyRows(ctx context.Context, q model.CartographyQuery) ([]model.CartographyRow, error) {
	where, args := statusFilter(nil, nil, q.Statuses)
	if q.Category != "" {
		where = append(where, "i.category_code = ?")
		args = append(args, string(q.Category))
	}

	query := `
		SELECT i.id AS installation_id, i.mantis, i.status, i.delivery_date,
		       c.code AS category_code, c.name AS category_name,
		       l.name AS lot_name, l.version AS version
		FROM installations i
		JOIN installation_lots il ON il.installation_id = i.id
		JOIN lots l ON l.id = il.lot_id
		JOIN categories c ON c.code = i.category_code
	` + whereClause(where) + `
		ORDER BY c.name, l.name, i.id
	`

	var records []cartographyRecord
	if err := r.selectIn(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query cartography rows: %w", err)
	}

	type pairKey struct {
		installationID int64
		lot            string
	}
	maxVersion := make(map[pairKey]string, len(records))
	for _, rec := range records {
		key := pairKey{rec.InstallationID, rec.LotName}
		if cur, ok := maxVersion[key]; ok {
			maxVersion[key] = model.MaxVersion(cur, rec.Version)
		} else {
			maxVersion[key] = rec.Version
		}
	}

	rows := make([]model.CartographyRow, 0, len(records))
	for _, rec := range records {
		delivered, raw := lenientDate(rec.DeliveryDate, "delivery_date", rec.Mantis)
		rows = append(rows, model.CartographyRow{
			InstallationID:  rec.InstallationID,
			Mantis:          rec.Mantis,
			Status:          model.Status(rec.Status),
			DeliveryDate:    delivered,
			DeliveryDateRaw: raw,
			CategoryCode:    model.CategoryCode(rec.CategoryCode),
			CategoryName:    rec.CategoryName,
			LotName:         rec.LotName,
			Version:         maxVersion[pairKey{rec.InstallationID, rec.LotName}],
		})
	}
	return rows, nil
}

type installationRecord struct {
	ID           int64          `db:"id"`
	Mantis       string         `db:"mantis"`
	Description  string         `db:"description"`
	Requester    string         `db:"requester"`
	Priority     int            `db:"priority"`
	Status       string         `db:"status"`
	Category     sql.NullString `db:"category_code"`
	StartDate    sql.NullString `db:"start_date"`
	DesiredDate  sql.NullString `db:"desired_date"`
	DeliveryDate sql.NullString `db:"delivery_date"`
}

// toModel converts the record. Dates that do not parse are left zero and
// returned in RawDates.
func (rec installationRecord) toModel() (model.Installation, model.RawDates) {
	inst := model.Installation{
		ID:          rec.ID,
		Mantis:      rec.Mantis,
		Description: rec.Description,
		Requester:   rec.Requester,
		Priority:    rec.Priority,
		Status:      model.Status(rec.Status),
		Category:    model.CategoryCode(rec.Category.String),
	}

	var raw model.RawDates
	inst.StartDate, raw.Start = lenientDate(rec.StartDate, "start_date", rec.Mantis)
	inst.DesiredDate, raw.Desired = lenientDate(rec.DesiredDate, "desired_date", rec.Mantis)
	inst.DeliveryDate, raw.Delivery = lenientDate(rec.DeliveryDate, "delivery_date", rec.Mantis)
	return inst, raw
}

// DeliveredInstallations returns installations in the status set, optionally
// restricted to a delivery date range. Rows lacking dates, or holding a date
// that does not parse, are returned with a zero date; the delay engine
// decides what to exclude.
func (r *ReportRepo) DeliveredInstallations(ctx context.Context, q model.DelayQuery) ([]model.Installation, error) {
	where, args := statusFilter(nil, nil, q.Statuses)
	if !q.From.IsZero() {
		where = append(where, "i.delivery_date >= ?")
		args = append(args, q.From.Format(model.DateLayout))
	}
	if !q.To.IsZero() {
		where = append(where, "i.delivery_date <= ?")
		args = append(args, q.To.Format(model.DateLayout))
	}

	query := `
		SELECT i.id, i.mantis, i.description, i.requester, i.priority, i.status,
		       i.category_code, i.start_date, i.desired_date, i.delivery_date
		FROM installations i
	` + whereClause(where) + `
		ORDER BY i.delivery_date, i.mantis
	`

	var records []installationRecord
	if err := r.selectIn(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query delivered installations: %w", err)
	}

	insts := make([]model.Installation, 0, len(records))
	for _, rec := range records {
		inst, _ := rec.toModel()
		insts = append(insts, inst)
	}
	return insts, nil
}

type installationLotRecord struct {
	installationRecord
	LotID          sql.NullInt64  `db:"lot_id"`
	LotName        sql.NullString `db:"lot_name"`
	LotVersion     sql.NullString `db:"lot_version"`
	VersionID      sql.NullInt64  `db:"version_id"`
	IsNewLot       sql.NullBool   `db:"is_new_lot"`
	ArtefactNumber sql.NullInt64  `db:"artefact_number"`
	PreviousLotID  sql.NullInt64  `db:"previous_lot_id"`
}

// InstallationLotRows returns every installation joined with its lots and the
// latest version record of each lot for the installation's ticket. An
// installation without lots yields a single row with a zero LotID.
func (r *ReportRepo) InstallationLotRows(ctx context.Context, q model.ExportQuery) ([]model.InstallationLotRow, error) {
	var where []string
	var args []any
	if q.Mantis != "" {
		where = append(where, "i.mantis = ?")
		args = append(args, q.Mantis)
	}
	if len(q.Statuses) > 0 {
		where, args = statusFilter(where, args, q.Statuses)
	}

	query := `
		SELECT i.id, i.mantis, i.description, i.requester, i.priority, i.status,
		       i.category_code, i.start_date, i.desired_date, i.delivery_date,
		       l.id AS lot_id, l.name AS lot_name, l.version AS lot_version,
		       lv.id AS version_id, lv.is_new_lot, lv.artefact_number,
		       lv.previous_id AS previous_lot_id
		FROM installations i
		LEFT JOIN installation_lots il ON il.installation_id = i.id
		LEFT JOIN lots l ON l.id = il.lot_id
		LEFT JOIN lot_versions lv ON lv.id = (
			SELECT MAX(x.id) FROM lot_versions x
			WHERE x.lot_id = l.id AND x.mantis = i.mantis
		)
	` + whereClause(where) + `
		ORDER BY i.id, l.name, l.id
	`

	var records []installationLotRecord
	if err := r.selectIn(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query installation lots: %w", err)
	}

	rows := make([]model.InstallationLotRow, 0, len(records))
	for _, rec := range records {
		inst, raw := rec.toModel()
		row := model.InstallationLotRow{
			InstallationID: inst.ID,
			Mantis:         inst.Mantis,
			Description:    inst.Description,
			Requester:      inst.Requester,
			Priority:       inst.Priority,
			Status:         inst.Status,
			Category:       inst.Category,
			StartDate:      inst.StartDate,
			DesiredDate:    inst.DesiredDate,
			DeliveryDate:   inst.DeliveryDate,
			RawDates:       raw,
			LotID:          rec.LotID.Int64,
			LotName:        rec.LotName.String,
			LotVersion:     rec.LotVersion.String,
		}
		if rec.VersionID.Valid {
			id := rec.VersionID.Int64
			row.VersionID = &id
		}
		if rec.IsNewLot.Valid {
			isNew := rec.IsNewLot.Bool
			row.IsNewLot = &isNew
		}
		if rec.ArtefactNumber.Valid {
			n := int(rec.ArtefactNumber.Int64)
			row.ArtefactNumber = &n
		}
		if rec.PreviousLotID.Valid {
			id := rec.PreviousLotID.Int64
			row.PreviousLotID = &id
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// selectIn expands slice arguments with sqlx.In and scans all rows into dest.
func (r *ReportRepo) selectIn(ctx context.Context, dest any, query string, args ...any) error {
	if len(args) > 0 {
		expanded, expandedArgs, err := sqlx.In(query, args...)
		if err != nil {
			return fmt.Errorf("expand query: %w", err)
		}
		query, args = r.db.Rebind(expanded), expandedArgs
	}
	return sqlx.SelectContext(ctx, r.db, dest, query, args...)
}

// statusFilter appends an "i.status IN (?)" condition. The statuses slice is
// expanded by sqlx.In. An empty set means every delivered/validated status.
func statusFilter(where []string, args []any, statuses []model.Status) ([]string, []any) {
	if len(statuses) == 0 {
		statuses = model.DeliveredStatuses()
	}
	codes := make([]string, len(statuses))
	for i, s := range statuses {
		codes[i] = string(s)
	}
	return append(where, "i.status IN (?)"), append(args, codes)
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE (" + strings.Join(conds, ") AND (") + ")"
}
