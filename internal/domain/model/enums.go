package model

// Status represents the lifecycle state of an installation.
type Status string

const (
	StatusNew              Status = "new"
	StatusPlanned          Status = "planned"
	StatusInProgress       Status = "in_progress"
	StatusDelivered        Status = "delivered"
	StatusValidatedTest    Status = "validated_test"
	StatusValidatedPreprod Status = "validated_preprod"
	StatusValidatedProd    Status = "validated_prod"
	StatusCancelled        Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusNew:              "New",
	StatusPlanned:          "Planned",
	StatusInProgress:       "In progress",
	StatusDelivered:        "Delivered",
	StatusValidatedTest:    "Validated (test)",
	StatusValidatedPreprod: "Validated (pre-production)",
	StatusValidatedProd:    "Validated (production)",
	StatusCancelled:        "Cancelled",
}

// Label returns the human-readable label for the status. Unknown statuses
// return their raw code.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether s is one of the known status codes.
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsDelivered reports whether s is one of the delivered/validated codes that
// reports are allowed to filter on.
func (s Status) IsDelivered() bool {
	switch s {
	case StatusDelivered, StatusValidatedTest, StatusValidatedPreprod, StatusValidatedProd:
		return true
	}
	return false
}

// DeliveredStatuses returns the four delivered/validated codes in lifecycle order.
func DeliveredStatuses() []Status {
	return []Status{StatusDelivered, StatusValidatedTest, StatusValidatedPreprod, StatusValidatedProd}
}

// AllStatuses returns every status code in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusNew, StatusPlanned, StatusInProgress, StatusDelivered,
		StatusValidatedTest, StatusValidatedPreprod, StatusValidatedProd, StatusCancelled,
	}
}

// CategoryCode identifies the context (subsystem) an installation belongs to.
type CategoryCode string

const (
	CategoryApplication    CategoryCode = "APP"
	CategoryBatch          CategoryCode = "BATCH"
	CategoryInterface      CategoryCode = "ITF"
	CategoryReferential    CategoryCode = "REF"
	CategoryInfrastructure CategoryCode = "INFRA"
)

// IsKnown reports whether c is one of the enumerated category codes.
func (c CategoryCode) IsKnown() bool {
	switch c {
	case CategoryApplication, CategoryBatch, CategoryInterface, CategoryReferential, CategoryInfrastructure:
		return true
	}
	return false
}
