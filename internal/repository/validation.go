package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"civicreports/internal/models"
)

type validationStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewValidationStore creates a Postgres-backed ValidationStore.
func NewValidationStore(db *sqlx.DB, logger *zap.Logger) ValidationStore {
	return &validationStore{db: db, logger: logger}
}

func (s *validationStore) UpsertValidation(v *models.Validation) (bool, error) {
	// Callers serialize writes per report, so check-then-upsert is safe and
	// the unique index is only a backstop.
	var exists bool
	err := s.db.Get(&exists, `
		SELECT EXISTS (
			SELECT 1 FROM validations
			WHERE report_id = $1 AND user_identifier = $2 AND validation_type = $3
		)`, v.ReportID, v.UserIdentifier, v.ValidationType)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO validations (id, report_id, user_identifier, validation_type, comment, new_severity, duplicate_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (report_id, user_identifier, validation_type)
		DO UPDATE SET comment = EXCLUDED.comment,
		              new_severity = EXCLUDED.new_severity,
		              duplicate_of = EXCLUDED.duplicate_of,
		              created_at = EXCLUDED.created_at
	`
	_, err = s.db.Exec(query, v.ID, v.ReportID, v.UserIdentifier, v.ValidationType,
		v.Comment, v.NewSeverity, v.DuplicateOf, v.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to upsert validation",
			zap.String("report_id", v.ReportID),
			zap.String("validation_type", string(v.ValidationType)),
			zap.Error(err))
		return false, err
	}

	return !exists, nil
}

func (s *validationStore) ListValidations(reportID string) ([]*models.Validation, error) {
	var validations []*models.Validation
	query := `
		SELECT id, report_id, user_identifier, validation_type, comment, new_severity, duplicate_of, created_at
		FROM validations
		WHERE report_id = $1
		ORDER BY created_at ASC
	`
	if err := s.db.Select(&validations, query, reportID); err != nil {
		return nil, err
	}
	return validations, nil
}
