// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Option is one entry of a select input.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// CartographyPageViewModel holds the lot cartography grouped by context.
type CartographyPageViewModel struct {
	Categories []Option
	Contexts   []ContextViewModel
	ExportPath string // JSON report endpoint matching the current filter.
}

// ContextViewModel is one context table of the cartography.
type ContextViewModel struct {
	Name string
	Lots []CartographyLotViewModel
}

// CartographyLotViewModel is the retained entry of one lot.
type CartographyLotViewModel struct {
	Name         string
	Version      string
	Category     string
	Status       string
	DeliveryDate string
	Mantis       string
	DetailPath   string
}

// DelayPageViewModel holds the monthly delivery-delay statistics.
type DelayPageViewModel struct {
	From    string
	To      string
	Locale  string
	Months  []DelayMonthViewModel
	TotalOK int
	TotalKO int
}

// DelayMonthViewModel is one month of delay statistics.
type DelayMonthViewModel struct {
	Label      string
	OK         int
	KO         int
	OnTimeRate string // "75%", empty when the month has no deliveries.
	Late       []MantisLinkViewModel
}

// MantisLinkViewModel links a Mantis id to its installation page.
type MantisLinkViewModel struct {
	Mantis     string
	DetailPath string
}

// InstallationRowViewModel is one line of the installation list.
type InstallationRowViewModel struct {
	Mantis       string
	Description  string
	User         string
	Status       string
	Category     string
	DesiredDate  string
	DeliveryDate string
	LotCount     int
	DetailPath   string
}

// InstallationDetailViewModel holds presentation-ready data for the
// installation detail page and its forms.
type InstallationDetailViewModel struct {
	Mantis         string
	Description    string
	User           string
	Priority       int
	Status         string
	Category       string
	StartDate      string
	DesiredDate    string
	DeliveryDate   string
	CommentaryHTML string // Sanitized HTML rendered from markdown.

	KnownLots   int
	NewVersions int
	NewLots     int
	Lots        []LotViewModel

	// Form targets and options.
	Statuses     []Option
	AdvanceURL   string
	AttachLotURL string
	CSRFToken    string
	FlashError   string
}

// LotViewModel is a lot attached to an installation.
type LotViewModel struct {
	Name    string
	Version string
}
