package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"civicreports/internal/models"
)

type historyStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHistoryStore creates a Postgres-backed HistoryStore.
func NewHistoryStore(db *sqlx.DB, logger *zap.Logger) HistoryStore {
	return &historyStore{db: db, logger: logger}
}

func (s *historyStore) AppendEntry(entry *models.ChangeHistoryEntry) error {
	query := `
		INSERT INTO change_history (id, report_id, change_type, old_value, new_value, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(query, entry.ID, entry.ReportID, entry.ChangeType,
		entry.OldValue, entry.NewValue, entry.ChangedBy, entry.Reason, entry.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to append history entry",
			zap.String("report_id", entry.ReportID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *historyStore) ListEntries(reportID string) ([]*models.ChangeHistoryEntry, error) {
	var entries []*models.ChangeHistoryEntry
	// seq is a bigserial; it preserves insertion order even when two entries
	// share a created_at timestamp.
	query := `
		SELECT id, report_id, change_type, old_value, new_value, changed_by, reason, created_at
		FROM change_history
		WHERE report_id = $1
		ORDER BY seq ASC
	`
	if err := s.db.Select(&entries, query, reportID); err != nil {
		return nil, err
	}
	return entries, nil
}
