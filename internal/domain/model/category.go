package model

// Category is a classification label grouping installations by subsystem.
// Name is the display name used as the outer key of reports.
type Category struct {
	Code CategoryCode
	Name string
}
