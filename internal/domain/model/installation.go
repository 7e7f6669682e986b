package model

import "time"

// Installation represents one tracked change request, identified by its
// Mantis ticket.
type Installation struct {
	ID           int64
	Mantis       string // External ticket identifier, unique.
	Description  string
	Requester    string
	Priority     int
	Status       Status
	Category     CategoryCode // Empty when uncategorized.
	StartDate    time.Time    // When the request was logged (zero if unknown).
	DesiredDate  time.Time    // Desired delivery date (zero if unknown).
	DeliveryDate time.Time    // Actual delivery date (zero until delivered).
	Commentary   string       // Markdown.
	Counters     LotCounters
	CreatedAt    time.Time
}

// LotCounters summarizes the lots touched by an installation.
type LotCounters struct {
	KnownLots   int // Every lot attached to the installation.
	NewVersions int // Lots that already existed and received a new version.
	NewLots     int // Lots delivered for the first time.
}

// HasDeliveryDates reports whether both the desired and actual delivery
// dates are set.
func (i Installation) HasDeliveryDates() bool {
	return !i.DesiredDate.IsZero() && !i.DeliveryDate.IsZero()
}
