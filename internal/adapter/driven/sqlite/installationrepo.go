package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InstallationStore = (*InstallationRepo)(nil)

// InstallationRepo is the SQLite implementation of the InstallationStore port interface.
type InstallationRepo struct {
	db *DB
}

// NewInstallationRepo creates a new InstallationRepo backed by the given DB.
func NewInstallationRepo(db *DB) *InstallationRepo {
	return &InstallationRepo{db: db}
}

const installationColumns = `
	id, mantis, description, requester, priority, status, category_code,
	start_date, desired_date, delivery_date, commentary,
	known_lots, new_versions, new_lots, created_at
`

// Create inserts a new installation and returns its id. Returns
// ErrInstallationExists if the Mantis id is already tracked.
func (r *InstallationRepo) Create(ctx context.Context, inst model.Installation) (int64, error) {
	const query = `
		INSERT INTO installations (
			mantis, description, requester, priority, status, category_code,
			start_date, desired_date, delivery_date, commentary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		inst.Mantis, inst.Description, inst.Requester, inst.Priority, string(inst.Status),
		nullableString(string(inst.Category)),
		dateArg(inst.StartDate), dateArg(inst.DesiredDate), dateArg(inst.DeliveryDate),
		inst.Commentary,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return 0, fmt.Errorf("create installation %s: %w", inst.Mantis, driven.ErrInstallationExists)
		}
		return 0, fmt.Errorf("create installation %s: %w", inst.Mantis, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read installation id: %w", err)
	}
	return id, nil
}

// GetByMantis retrieves an installation by Mantis id. Returns nil, nil if it
// does not exist.
func (r *InstallationRepo) GetByMantis(ctx context.Context, mantis string) (*model.Installation, error) {
	query := `SELECT ` + installationColumns + ` FROM installations WHERE mantis = ?`

	inst, err := scanInstallation(r.db.Reader.QueryRowContext(ctx, query, mantis))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get installation %s: %w", mantis, err)
	}
	return inst, nil
}

// ListAll returns all installations ordered by Mantis id.
func (r *InstallationRepo) ListAll(ctx context.Context) ([]model.Installation, error) {
	query := `SELECT ` + installationColumns + ` FROM installations ORDER BY mantis`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}
	defer rows.Close()

	var insts []model.Installation
	for rows.Next() {
		inst, err := scanInstallation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installation: %w", err)
		}
		insts = append(insts, *inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installations: %w", err)
	}

	return insts, nil
}

// UpdateProgress sets the status of an installation and, when deliveryDate is
// non-zero, its actual delivery date.
func (r *InstallationRepo) UpdateProgress(ctx context.Context, mantis string, status model.Status, deliveryDate time.Time) error {
	const query = `
		UPDATE installations
		SET status = ?, delivery_date = COALESCE(?, delivery_date)
		WHERE mantis = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query, string(status), dateArg(deliveryDate), mantis)
	if err != nil {
		return fmt.Errorf("update installation %s: %w", mantis, err)
	}
	return requireAffected(result, fmt.Sprintf("update installation %s", mantis))
}

func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrInstallationNotFound)
	}
	return nil
}

func scanInstallation(s scanner) (*model.Installation, error) {
	var inst model.Installation
	var status, createdAt string
	var category, startDate, desiredDate, deliveryDate sql.NullString

	err := s.Scan(
		&inst.ID, &inst.Mantis, &inst.Description, &inst.Requester, &inst.Priority, &status, &category,
		&startDate, &desiredDate, &deliveryDate, &inst.Commentary,
		&inst.Counters.KnownLots, &inst.Counters.NewVersions, &inst.Counters.NewLots, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	inst.Status = model.Status(status)
	inst.Category = model.CategoryCode(category.String)

	inst.StartDate, _ = lenientDate(startDate, "start_date", inst.Mantis)
	inst.DesiredDate, _ = lenientDate(desiredDate, "desired_date", inst.Mantis)
	inst.DeliveryDate, _ = lenientDate(deliveryDate, "delivery_date", inst.Mantis)
	if inst.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &inst, nil
}
