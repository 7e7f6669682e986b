package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// ReportService validates report queries, loads the flat rows from the store
// and shapes them into the cartography, delay and export reports.
type ReportService struct {
	reportStore driven.ReportStore
	locale      string
}

// NewReportService creates a ReportService. locale selects the language of
// month labels; an empty locale uses DefaultLocale.
func NewReportService(reportStore driven.ReportStore, locale string) *ReportService {
	if locale == "" {
		locale = DefaultLocale
	}
	return &ReportService{
		reportStore: reportStore,
		locale:      locale,
	}
}

// Locale returns the default locale used for month labels.
func (s *ReportService) Locale() string {
	return s.locale
}

// Cartography returns the latest version of each lot per context.
func (s *ReportService) Cartography(ctx context.Context, q model.CartographyQuery) (*model.Cartography, error) {
	statuses, err := reportStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(q.Category); err != nil {
		return nil, err
	}
	q.Statuses = statuses

	rows, err := s.reportStore.CartographyRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load cartography rows: %w", err)
	}

	return BuildCartography(rows), nil
}

// DelayStats returns the monthly on-time/late delivery counts. An empty
// locale uses the service default.
func (s *ReportService) DelayStats(ctx context.Context, q model.DelayQuery, locale string) ([]model.DelayBucket, error) {
	statuses, err := reportStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	q.Statuses = statuses

	if locale == "" {
		locale = s.locale
	}

	installs, err := s.reportStore.DeliveredInstallations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load delivered installations: %w", err)
	}

	return ComputeDelayStats(installs, locale), nil
}

// Installations returns the installations with their lots, as exported to JSON.
// Unlike the other reports, an empty status set does not filter.
func (s *ReportService) Installations(ctx context.Context, q model.ExportQuery) ([]model.InstallationExport, error) {
	for _, st := range q.Statuses {
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, st)
		}
	}

	rows, err := s.reportStore.InstallationLotRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load installation lots: %w", err)
	}

	return ComposeInstallations(rows), nil
}
