// Package repository defines the storage boundary of the validation engine
// and provides Postgres and in-memory implementations. The engine itself is
// storage-agnostic; it talks only to these interfaces.
package repository

import (
	"time"

	"civicreports/internal/models"
)

// ReportStore loads reports and persists their validation state. Reports are
// created by the external submission API; this service never originates one,
// so SaveReport only touches the validation-related columns.
type ReportStore interface {
	// GetReport returns the report, or (nil, nil) when it does not exist.
	GetReport(id string) (*models.Report, error)
	SaveReport(report *models.Report) error
	ListReports() ([]*models.Report, error)
	ListReportsByCategory(category string) ([]*models.Report, error)
}

// ValidationStore persists votes. Upsert semantics back the
// one-vote-per-(user, type) rule: an existing row is overwritten in place.
type ValidationStore interface {
	// UpsertValidation stores v, replacing any prior vote with the same
	// (report_id, user_identifier, validation_type). It returns true when
	// the vote was newly created rather than overwritten.
	UpsertValidation(v *models.Validation) (bool, error)
	ListValidations(reportID string) ([]*models.Validation, error)
}

// HistoryStore is the append-only audit log. Entries are never edited or
// deleted; ListEntries returns them in insertion order.
type HistoryStore interface {
	AppendEntry(entry *models.ChangeHistoryEntry) error
	ListEntries(reportID string) ([]*models.ChangeHistoryEntry, error)
}

// ModeratorStore holds the moderator registry. UpsertModerator overwrites
// prior info for an existing identifier; deactivation is a data update, not
// a delete.
type ModeratorStore interface {
	UpsertModerator(m *models.Moderator) error
	// GetModerator returns the moderator, or (nil, nil) when unknown.
	GetModerator(identifier string) (*models.Moderator, error)
	ListModerators() ([]*models.Moderator, error)
	TouchActivity(identifier string, at time.Time) error
}
