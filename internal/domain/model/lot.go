package model

// Lot is a named deliverable at a given version. A name and version pair is unique.
type Lot struct {
	ID      int64
	Name    string
	Version string
}

// LotVersion records the delivery of a lot by an installation.
type LotVersion struct {
	ID             int64
	LotID          int64
	Mantis         string // Ticket of the installation that delivered the lot.
	IsNewLot       bool   // True when no lot with the same name was delivered before.
	ArtefactNumber *int   // Number of artefacts updated, when known.
	PreviousID     *int64 // Latest earlier LotVersion for the same lot name.
}

// LotDelivery describes a lot version delivered by the installation with the
// given Mantis id.
type LotDelivery struct {
	Mantis         string
	Name           string
	Version        string
	ArtefactNumber *int
}
