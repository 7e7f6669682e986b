package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LotStore = (*LotRepo)(nil)

// LotRepo is the SQLite implementation of the LotStore port interface.
type LotRepo struct {
	db *DB
}

// NewLotRepo creates a new LotRepo backed by the given DB.
func NewLotRepo(db *DB) *LotRepo {
	return &LotRepo{db: db}
}

// AttachVersion records the delivery of d.Name@d.Version by the installation
// d.Mantis in a single transaction. The record is flagged as a new lot when no
// version record of that lot name exists yet, including records written
// earlier by the same ticket, and chains to the latest one otherwise.
// The single writer connection serializes concurrent deliveries, so two
// deliveries of a brand-new lot name cannot both be flagged new.
func (r *LotRepo) AttachVersion(ctx context.Context, d model.LotDelivery) (*model.LotVersion, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	var installationID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM installations WHERE mantis = ?`, d.Mantis).Scan(&installationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attach lot to %s: %w", d.Mantis, driven.ErrInstallationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get installation %s: %w", d.Mantis, err)
	}

	previous, err := latestVersionByName(ctx, tx, d.Name)
	if err != nil {
		return nil, err
	}

	lotID, err := ensureLot(ctx, tx, d.Name, d.Version)
	if err != nil {
		return nil, err
	}

	const attachQuery = `INSERT OR IGNORE INTO installation_lots (installation_id, lot_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, attachQuery, installationID, lotID); err != nil {
		return nil, fmt.Errorf("attach lot %d to installation %d: %w", lotID, installationID, err)
	}

	record := model.LotVersion{
		LotID:          lotID,
		Mantis:         d.Mantis,
		IsNewLot:       previous == nil,
		ArtefactNumber: d.ArtefactNumber,
	}
	if previous != nil {
		prevID := previous.ID
		record.PreviousID = &prevID
	}
	if record.ID, err = recordVersion(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := updateCounters(ctx, tx, installationID, d.Mantis); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lot %s@%s for %s: %w", d.Name, d.Version, d.Mantis, err)
	}

	return &record, nil
}

// ensureLot returns the id of the (name, version) lot, inserting it first if
// it does not exist yet.
func ensureLot(ctx context.Context, tx *sql.Tx, name, version string) (int64, error) {
	const insertQuery = `INSERT INTO lots (name, version) VALUES (?, ?) ON CONFLICT(name, version) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insertQuery, name, version); err != nil {
		return 0, fmt.Errorf("insert lot %s@%s: %w", name, version, err)
	}

	const selectQuery = `SELECT id FROM lots WHERE name = ? AND version = ?`
	var id int64
	if err := tx.QueryRowContext(ctx, selectQuery, name, version).Scan(&id); err != nil {
		return 0, fmt.Errorf("get lot %s@%s: %w", name, version, err)
	}
	return id, nil
}

func recordVersion(ctx context.Context, tx *sql.Tx, v model.LotVersion) (int64, error) {
	const query = `
		INSERT INTO lot_versions (lot_id, mantis, is_new_lot, artefact_number, previous_id)
		VALUES (?, ?, ?, ?, ?)
	`

	isNew := 0
	if v.IsNewLot {
		isNew = 1
	}

	var artefacts, previous any
	if v.ArtefactNumber != nil {
		artefacts = *v.ArtefactNumber
	}
	if v.PreviousID != nil {
		previous = *v.PreviousID
	}

	result, err := tx.ExecContext(ctx, query, v.LotID, v.Mantis, isNew, artefacts, previous)
	if err != nil {
		return 0, fmt.Errorf("record version of lot %d for %s: %w", v.LotID, v.Mantis, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read lot version id: %w", err)
	}
	return id, nil
}

// latestVersionByName returns the most recent version record of any lot with
// the given name, or nil, nil if the name was never delivered.
func latestVersionByName(ctx context.Context, tx *sql.Tx, name string) (*model.LotVersion, error) {
	const query = `
		SELECT lv.id, lv.lot_id, lv.mantis, lv.is_new_lot, lv.artefact_number, lv.previous_id
		FROM lot_versions lv
		JOIN lots l ON l.id = lv.lot_id
		WHERE l.name = ?
		ORDER BY lv.id DESC
		LIMIT 1
	`

	v, err := scanLotVersion(tx.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest version of lot %s: %w", name, err)
	}
	return v, nil
}

// updateCounters recounts the lots attached to an installation and how many
// of them were delivered for the first time, using the latest version record
// of each lot for that ticket, and stores the result.
func updateCounters(ctx context.Context, tx *sql.Tx, installationID int64, mantis string) error {
	const countQuery = `
		SELECT
			COUNT(*),
			COALESCE(SUM((
				SELECT lv.is_new_lot FROM lot_versions lv
				WHERE lv.lot_id = il.lot_id AND lv.mantis = ?
				ORDER BY lv.id DESC LIMIT 1
			)), 0)
		FROM installation_lots il
		WHERE il.installation_id = ?
	`

	var c model.LotCounters
	if err := tx.QueryRowContext(ctx, countQuery, mantis, installationID).Scan(&c.KnownLots, &c.NewLots); err != nil {
		return fmt.Errorf("count lots for %s: %w", mantis, err)
	}
	c.NewVersions = c.KnownLots - c.NewLots

	const updateQuery = `UPDATE installations SET known_lots = ?, new_versions = ?, new_lots = ? WHERE id = ?`
	result, err := tx.ExecContext(ctx, updateQuery, c.KnownLots, c.NewVersions, c.NewLots, installationID)
	if err != nil {
		return fmt.Errorf("update counters for %s: %w", mantis, err)
	}
	return requireAffected(result, fmt.Sprintf("update counters for %s", mantis))
}

// ListByInstallation returns the lots attached to an installation, ordered by name.
func (r *LotRepo) ListByInstallation(ctx context.Context, installationID int64) ([]model.Lot, error) {
	const query = `
		SELECT l.id, l.name, l.version
		FROM lots l
		JOIN installation_lots il ON il.lot_id = l.id
		WHERE il.installation_id = ?
		ORDER BY l.name, l.version
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, fmt.Errorf("list lots for installation %d: %w", installationID, err)
	}
	defer rows.Close()

	var lots []model.Lot
	for rows.Next() {
		var lot model.Lot
		if err := rows.Scan(&lot.ID, &lot.Name, &lot.Version); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lots: %w", err)
	}

	return lots, nil
}

func scanLotVersion(s scanner) (*model.LotVersion, error) {
	var v model.LotVersion
	var isNew int
	var artefacts, previous sql.NullInt64

	if err := s.Scan(&v.ID, &v.LotID, &v.Mantis, &isNew, &artefacts, &previous); err != nil {
		return nil, err
	}

	v.IsNewLot = isNew != 0
	if artefacts.Valid {
		n := int(artefacts.Int64)
		v.ArtefactNumber = &n
	}
	if previous.Valid {
		id := previous.Int64
		v.PreviousID = &id
	}
	return &v, nil
}
