package application

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
	"github.com/ericfisherdev/installtrack/internal/domain/port/driven"
)

// mockReportStore records the queries it receives and returns canned rows.
type mockReportStore struct {
	cartoRows   []model.CartographyRow
	installs    []model.Installation
	lotRows     []model.InstallationLotRow
	err         error
	cartoQuery  *model.CartographyQuery
	delayQuery  *model.DelayQuery
	exportQuery *model.ExportQuery
}

func (m *mockReportStore) CartographyRows(_ context.Context, q model.CartographyQuery) ([]model.CartographyRow, error) {
	m.cartoQuery = &q
	return m.cartoRows, m.err
}

func (m *mockReportStore) DeliveredInstallations(_ context.Context, q model.DelayQuery) ([]model.Installation, error) {
	m.delayQuery = &q
	return m.installs, m.err
}

func (m *mockReportStore) InstallationLotRows(_ context.Context, q model.ExportQuery) ([]model.InstallationLotRow, error) {
	m.exportQuery = &q
	return m.lotRows, m.err
}

// memStore is an in-memory InstallationStore and LotStore.
type memStore struct {
	mu       sync.Mutex
	installs map[string]*model.Installation
	nextID   int64
	lots     []model.Lot
	links    map[int64][]int64
	versions []model.LotVersion

	attachErr error
}

var (
	_ driven.InstallationStore = (*memStore)(nil)
	_ driven.LotStore          = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{installs: make(map[string]*model.Installation), links: make(map[int64][]int64)}
}

func (m *memStore) Create(_ context.Context, inst model.Installation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.installs[inst.Mantis]; ok {
		return 0, driven.ErrInstallationExists
	}
	m.nextID++
	inst.ID = m.nextID
	m.installs[inst.Mantis] = &inst
	return inst.ID, nil
}

func (m *memStore) GetByMantis(_ context.Context, mantis string) (*model.Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.installs[mantis]
	if !ok {
		return nil, nil
	}
	cp := *inst
	return &cp, nil
}

func (m *memStore) ListAll(_ context.Context) ([]model.Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Installation
	for _, inst := range m.installs {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mantis < out[j].Mantis })
	return out, nil
}

func (m *memStore) UpdateProgress(_ context.Context, mantis string, status model.Status, deliveryDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.installs[mantis]
	if !ok {
		return driven.ErrInstallationNotFound
	}
	inst.Status = status
	if !deliveryDate.IsZero() {
		inst.DeliveryDate = deliveryDate
	}
	return nil
}

// AttachVersion applies the whole delivery under one lock. When attachErr is
// set it fails before touching any state.
func (m *memStore) AttachVersion(_ context.Context, d model.LotDelivery) (*model.LotVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attachErr != nil {
		return nil, m.attachErr
	}
	inst, ok := m.installs[d.Mantis]
	if !ok {
		return nil, driven.ErrInstallationNotFound
	}

	var previous *model.LotVersion
	for i := len(m.versions) - 1; i >= 0; i-- {
		if m.lots[m.versions[i].LotID-1].Name == d.Name {
			previous = &m.versions[i]
			break
		}
	}

	lotID := int64(0)
	for _, l := range m.lots {
		if l.Name == d.Name && l.Version == d.Version {
			lotID = l.ID
		}
	}
	if lotID == 0 {
		lotID = int64(len(m.lots) + 1)
		m.lots = append(m.lots, model.Lot{ID: lotID, Name: d.Name, Version: d.Version})
	}
	if !slices.Contains(m.links[inst.ID], lotID) {
		m.links[inst.ID] = append(m.links[inst.ID], lotID)
	}

	v := model.LotVersion{
		ID:             int64(len(m.versions) + 1),
		LotID:          lotID,
		Mantis:         d.Mantis,
		IsNewLot:       previous == nil,
		ArtefactNumber: d.ArtefactNumber,
	}
	if previous != nil {
		prevID := previous.ID
		v.PreviousID = &prevID
	}
	m.versions = append(m.versions, v)

	var c model.LotCounters
	for _, id := range m.links[inst.ID] {
		c.KnownLots++
		for i := len(m.versions) - 1; i >= 0; i-- {
			if m.versions[i].LotID == id && m.versions[i].Mantis == d.Mantis {
				if m.versions[i].IsNewLot {
					c.NewLots++
				}
				break
			}
		}
	}
	c.NewVersions = c.KnownLots - c.NewLots
	inst.Counters = c

	return &v, nil
}

func (m *memStore) ListByInstallation(_ context.Context, installationID int64) ([]model.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lot
	for _, id := range m.links[installationID] {
		out = append(out, m.lots[id-1])
	}
	return out, nil
}
