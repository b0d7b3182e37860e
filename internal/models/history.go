package models

import "time"

// ChangeType classifies an audit log entry.
type ChangeType string

const (
	ChangeStatus          ChangeType = "status_change"
	ChangeSeverity        ChangeType = "severity_change"
	ChangeValidated       ChangeType = "validated"
	ChangeDuplicateMarked ChangeType = "duplicate_marked"
	ChangeModerated       ChangeType = "moderated"
)

// Valid reports whether t is one of the known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeStatus, ChangeSeverity, ChangeValidated, ChangeDuplicateMarked, ChangeModerated:
		return true
	}
	return false
}

// ActorCommunity is the changed_by value for transitions driven by
// community vote thresholds rather than an individual actor.
const ActorCommunity = "community"

// ChangeHistoryEntry is one row of the append-only audit log in the
// 'change_history' table. Entries are never edited or deleted, even when the
// owning report is removed by an external process.
type ChangeHistoryEntry struct {
	ID         string     `db:"id" json:"id"`
	ReportID   string     `db:"report_id" json:"report_id"`
	ChangeType ChangeType `db:"change_type" json:"change_type"`
	OldValue   string     `db:"old_value" json:"old_value"`
	NewValue   string     `db:"new_value" json:"new_value"`
	ChangedBy  string     `db:"changed_by" json:"changed_by"`
	Reason     string     `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
