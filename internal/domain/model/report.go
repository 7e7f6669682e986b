package model

import "time"

// DateLayout is the layout used for date-only values in reports and exports.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of delay bucket keys.
const MonthLayout = "2006-01"

// CartographyQuery filters the rows feeding the cartography report.
type CartographyQuery struct {
	Statuses []Status     // Delivered/validated codes; empty means all four.
	Category CategoryCode // Empty means every category.
}

// CartographyRow is one installation × lot row, annotated with the highest
// version known for the same (installation, lot name) pair.
type CartographyRow struct {
	InstallationID  int64
	Mantis          string
	Status          Status
	DeliveryDate    time.Time
	DeliveryDateRaw string // Stored value when it is not a valid date.
	CategoryCode    CategoryCode
	CategoryName    string
	LotName         string
	Version         string // Maximum version for (InstallationID, LotName).
}

// DelayQuery filters the installations feeding the delay statistics.
// From and To bound the actual delivery date, inclusive; zero means unbounded.
type DelayQuery struct {
	Statuses []Status
	From     time.Time
	To       time.Time
}

// DelayBucket holds the on-time/late counts for one month of deliveries.
type DelayBucket struct {
	Month    string   `json:"month"` // "2006-01".
	Label    string   `json:"label"` // Localized month name, e.g. "mars 2025".
	OK       int      `json:"ok"`
	KO       int      `json:"ko"`
	KOMantis []string `json:"ko_mantis"`
}

// ExportQuery filters the installation/lot export. Zero values disable a filter.
type ExportQuery struct {
	Mantis   string
	Statuses []Status
}

// InstallationLotRow is one installation joined with one of its lots and the
// latest version record for that lot and ticket.
type InstallationLotRow struct {
	InstallationID int64
	Mantis         string
	Description    string
	Requester      string
	Priority       int
	Status         Status
	Category       CategoryCode
	StartDate      time.Time
	DesiredDate    time.Time
	DeliveryDate   time.Time
	RawDates       RawDates

	LotID          int64
	LotName        string
	LotVersion     string
	VersionID      *int64 // Nil when no version record exists.
	IsNewLot       *bool
	ArtefactNumber *int
	PreviousLotID  *int64
}

// RawDates holds stored date values that are not valid dates, keyed like the
// installation date fields. Empty means the parsed date applies.
type RawDates struct {
	Start    string
	Desired  string
	Delivery string
}

// InstallationExport is the exported view of an installation and its lots.
type InstallationExport struct {
	ID          int64       `json:"id"`
	Mantis      string      `json:"mantis"`
	Description string      `json:"description"`
	User        string      `json:"user"`
	Priority    int         `json:"priority"`
	Status      string      `json:"status"`
	Category    string      `json:"category"`
	StartDate   *string     `json:"start_date"`
	DesiredDate *string     `json:"desired_date"`
	EndDate     *string     `json:"end_date"`
	Lots        []LotExport `json:"lots"`
}

// LotExport is one lot entry of an InstallationExport.
type LotExport struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Version        string `json:"version"`
	VersionID      *int64 `json:"version_id"`
	IsNewLot       *bool  `json:"is_new_lot"`
	IsNewVersion   bool   `json:"is_new_version"`
	ArtefactNumber *int   `json:"artefact_number"`
	PreviousLotID  *int64 `json:"previous_lot_id"`
}
