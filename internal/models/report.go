package models

import "time"

// Report categories accepted from the submission API.
const (
	CategoryHeat     = "heat"
	CategoryWaste    = "waste"
	CategoryFlooding = "flooding"
	CategoryOther    = "other"
)

// Severity is the ordered severity assigned to a report.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the known severity values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ValidationStatus is the lifecycle status of a report.
type ValidationStatus string

const (
	StatusPending            ValidationStatus = "pending"
	StatusCommunityValidated ValidationStatus = "community_validated"
	StatusModeratorValidated ValidationStatus = "moderator_validated"
	StatusRejected           ValidationStatus = "rejected"
	StatusDuplicate          ValidationStatus = "duplicate"
)

// Valid reports whether st is one of the known lifecycle statuses.
func (st ValidationStatus) Valid() bool {
	switch st {
	case StatusPending, StatusCommunityValidated, StatusModeratorValidated, StatusRejected, StatusDuplicate:
		return true
	}
	return false
}

// Report represents a citizen-submitted report stored in the 'reports' table.
// Core fields (category, coordinates, description, reported_at) are owned by
// the submission API; this service only mutates the validation fields.
type Report struct {
	ID               string           `db:"id" json:"id"`
	Category         string           `db:"category" json:"category"`
	Description      string           `db:"description" json:"description"`
	Latitude         float64          `db:"latitude" json:"latitude"`
	Longitude        float64          `db:"longitude" json:"longitude"`
	Severity         Severity         `db:"severity" json:"severity"`
	ReportedAt       time.Time        `db:"reported_at" json:"reported_at"`
	ValidationStatus ValidationStatus `db:"validation_status" json:"validation_status"`
	IsDuplicateOf    *string          `db:"is_duplicate_of" json:"is_duplicate_of,omitempty"`
	ConfirmedCount   int              `db:"confirmed_count" json:"confirmed_count"`
	RejectedCount    int              `db:"rejected_count" json:"rejected_count"`
	DuplicateCount   int              `db:"duplicate_count" json:"duplicate_count"`
	ValidationScore  int              `db:"validation_score" json:"validation_score"`
	ValidatedAt      *time.Time       `db:"validated_at" json:"validated_at,omitempty"`
	ValidatedBy      *string          `db:"validated_by" json:"validated_by,omitempty"`
}
