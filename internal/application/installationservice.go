package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// InstallationService manages the installation lifecycle: creation, status
// progress and the lots it delivers. It depends only on port interfaces.
type InstallationService struct {
	installStore driven.InstallationStore
	lotStore     driven.LotStore
	logger       *slog.Logger
}

// NewInstallationService creates an InstallationService with the required dependencies.
func NewInstallationService(installStore driven.InstallationStore, lotStore driven.LotStore, logger *slog.Logger) *InstallationService {
	return &InstallationService{
		installStore: installStore,
		lotStore:     lotStore,
		logger:       logger,
	}
}

// Create validates and stores a new installation. A missing status defaults
// to StatusNew.
func (s *InstallationService) Create(ctx context.Context, inst model.Installation) (*model.Installation, error) {
	inst.Mantis = strings.TrimSpace(inst.Mantis)
	if inst.Mantis == "" {
		return nil, fmt.Errorf("%w: mantis id is required", ErrInvalidInstallation)
	}
	if inst.Status == "" {
		inst.Status = model.StatusNew
	}
	if !inst.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, inst.Status)
	}
	if err := checkCategory(inst.Category); err != nil {
		return nil, err
	}

	id, err := s.installStore.Create(ctx, inst)
	if err != nil {
		return nil, err
	}
	inst.ID = id

	s.logger.Info("installation created", "mantis", inst.Mantis, "status", inst.Status)
	return &inst, nil
}

// Get returns the installation with the given Mantis id.
func (s *InstallationService) Get(ctx context.Context, mantis string) (*model.Installation, error) {
	inst, err := s.installStore.GetByMantis(ctx, mantis)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("get installation %s: %w", mantis, driven.ErrInstallationNotFound)
	}
	return inst, nil
}

// Lots returns the lots attached to the installation with the given Mantis id.
func (s *InstallationService) Lots(ctx context.Context, mantis string) ([]model.Lot, error) {
	inst, err := s.Get(ctx, mantis)
	if err != nil {
		return nil, err
	}
	return s.lotStore.ListByInstallation(ctx, inst.ID)
}

// Advance moves an installation to a new status. A non-zero deliveryDate
// records the actual delivery date.
func (s *InstallationService) Advance(ctx context.Context, mantis string, status model.Status, deliveryDate time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.installStore.UpdateProgress(ctx, mantis, status, deliveryDate); err != nil {
		return err
	}

	s.logger.Info("installation advanced", "mantis", mantis, "status", status, "delivery_date", formatDate(deliveryDate))
	return nil
}

// AttachLot records that the installation delivers name@version. The version
// record is flagged as a new lot when no lot with that name was delivered
// before, by any ticket including this one, and links to the previous record
// of the same lot name otherwise. The store applies the whole change,
// counters included, atomically.
func (s *InstallationService) AttachLot(ctx context.Context, mantis, name, version string, artefactNumber *int) (*model.LotVersion, error) {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if name == "" || version == "" {
		return nil, fmt.Errorf("%w: lot name and version are required", ErrInvalidInstallation)
	}

	record, err := s.lotStore.AttachVersion(ctx, model.LotDelivery{
		Mantis:         mantis,
		Name:           name,
		Version:        version,
		ArtefactNumber: artefactNumber,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lot attached",
		"mantis", mantis,
		"lot", name,
		"version", version,
		"new_lot", record.IsNewLot,
	)
	return record, nil
}
