package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"civicreports/internal/models"
)

type reportStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewReportStore creates a Postgres-backed ReportStore.
func NewReportStore(db *sqlx.DB, logger *zap.Logger) ReportStore {
	return &reportStore{db: db, logger: logger}
}

const reportColumns = `id, category, description, latitude, longitude, severity, reported_at,
	validation_status, is_duplicate_of, confirmed_count, rejected_count, duplicate_count,
	validation_score, validated_at, validated_by`

func (s *reportStore) GetReport(id string) (*models.Report, error) {
	report := &models.Report{}
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1`, reportColumns)
	err := s.db.Get(report, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return report, nil
}

func (s *reportStore) SaveReport(report *models.Report) error {
	// Core fields belong to the submission API; only validation state is ours.
	query := `
		UPDATE reports
		SET severity = $1,
		    validation_status = $2,
		    is_duplicate_of = $3,
		    confirmed_count = $4,
		    rejected_count = $5,
		    duplicate_count = $6,
		    validation_score = $7,
		    validated_at = $8,
		    validated_by = $9
		WHERE id = $10
	`
	result, err := s.db.Exec(query,
		report.Severity, report.ValidationStatus, report.IsDuplicateOf,
		report.ConfirmedCount, report.RejectedCount, report.DuplicateCount,
		report.ValidationScore, report.ValidatedAt, report.ValidatedBy, report.ID)
	if err != nil {
		s.logger.Error("Failed to save report validation state",
			zap.String("report_id", report.ID),
			zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found: %s", report.ID)
	}

	return nil
}

func (s *reportStore) ListReports() ([]*models.Report, error) {
	var reports []*models.Report
	query := fmt.Sprintf(`SELECT %s FROM reports ORDER BY reported_at DESC`, reportColumns)
	if err := s.db.Select(&reports, query); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *reportStore) ListReportsByCategory(category string) ([]*models.Report, error) {
	var reports []*models.Report
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE category = $1 ORDER BY reported_at DESC`, reportColumns)
	if err := s.db.Select(&reports, query, category); err != nil {
		return nil, err
	}
	return reports, nil
}
