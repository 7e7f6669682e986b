package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		safeName,
	)

	db, err := openDSN(context.Background(), dsn, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedInstallation inserts an installation and returns its id.
func seedInstallation(t *testing.T, db *DB, inst model.Installation) int64 {
	t.Helper()
	if inst.Status == "" {
		inst.Status = model.StatusDelivered
	}
	id, err := NewInstallationRepo(db).Create(context.Background(), inst)
	require.NoError(t, err)
	return id
}

// seedLot attaches name@version to the installation and records a version
// entry for its ticket with the given new-lot flag. Returns the lot id.
func seedLot(t *testing.T, db *DB, installationID int64, mantis, name, version string, isNew bool) int64 {
	t.Helper()
	lotID := seedLink(t, db, installationID, name, version)
	seedVersion(t, db, lotID, mantis, isNew, nil)
	return lotID
}

// seedLink ensures the name@version lot exists and links it to the
// installation without a version record. Returns the lot id.
func seedLink(t *testing.T, db *DB, installationID int64, name, version string) int64 {
	t.Helper()
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx, `INSERT OR IGNORE INTO lots (name, version) VALUES (?, ?)`, name, version)
	require.NoError(t, err)
	var lotID int64
	require.NoError(t, db.Writer.QueryRowContext(ctx, `SELECT id FROM lots WHERE name = ? AND version = ?`, name, version).Scan(&lotID))
	_, err = db.Writer.ExecContext(ctx, `INSERT OR IGNORE INTO installation_lots (installation_id, lot_id) VALUES (?, ?)`, installationID, lotID)
	require.NoError(t, err)
	return lotID
}

// seedVersion inserts a version record and returns its id.
func seedVersion(t *testing.T, db *DB, lotID int64, mantis string, isNew bool, artefacts *int) int64 {
	t.Helper()
	var artefactArg any
	if artefacts != nil {
		artefactArg = *artefacts
	}
	result, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO lot_versions (lot_id, mantis, is_new_lot, artefact_number) VALUES (?, ?, ?, ?)`,
		lotID, mantis, isNew, artefactArg,
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
