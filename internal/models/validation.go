package models

import "time"

// ValidationType is the kind of vote a user casts on a report.
type ValidationType string

const (
	ValidationConfirm        ValidationType = "confirm"
	ValidationReject         ValidationType = "reject"
	ValidationDuplicate      ValidationType = "duplicate"
	ValidationUpdateSeverity ValidationType = "update_severity"
)

// Valid reports whether t is one of the known vote types.
func (t ValidationType) Valid() bool {
	switch t {
	case ValidationConfirm, ValidationReject, ValidationDuplicate, ValidationUpdateSeverity:
		return true
	}
	return false
}

// Validation represents one user's vote on a report, stored in the
// 'validations' table. At most one row exists per
// (report_id, user_identifier, validation_type); a resubmission overwrites
// the payload and timestamp of the existing row.
type Validation struct {
	ID             string         `db:"id" json:"id"`
	ReportID       string         `db:"report_id" json:"report_id"`
	UserIdentifier string         `db:"user_identifier" json:"user_identifier"`
	ValidationType ValidationType `db:"validation_type" json:"validation_type"`
	Comment        string         `db:"comment" json:"comment,omitempty"`
	NewSeverity    *Severity      `db:"new_severity" json:"new_severity,omitempty"`
	DuplicateOf    *string        `db:"duplicate_of" json:"duplicate_of,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
