// Package scanner periodically refreshes duplicate candidates for pending
// reports, so suggestion queries are served from a warm cache.
package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"civicreports/internal/engine"
	"civicreports/internal/models"
	"civicreports/internal/repository"
)

// Scanner drives periodic duplicate detection. The engine itself never
// schedules work; this loop lives at the edge of the service and can be
// disabled entirely by configuration.
type Scanner struct {
	engine       *engine.Engine
	reports      repository.ReportStore
	logger       *zap.Logger
	scanInterval int64
}

// NewScanner creates a duplicate scanner.
func NewScanner(eng *engine.Engine, reports repository.ReportStore, logger *zap.Logger, scanInterval int64) *Scanner {
	return &Scanner{
		engine:       eng,
		reports:      reports,
		logger:       logger,
		scanInterval: scanInterval,
	}
}

// Run starts the periodic duplicate scan. It returns when ctx is canceled.
func (s *Scanner) Run(ctx context.Context) {
	s.logger.Info("Duplicate scanner started.")

	ticker := time.NewTicker(time.Duration(s.scanInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Duplicate scanner stopped.")
			return
		case <-ticker.C:
			s.scanOnce(ctx)
		}
	}
}

func (s *Scanner) scanOnce(ctx context.Context) {
	reports, err := s.reports.ListReports()
	if err != nil {
		s.logger.Error("Failed to list reports for duplicate scan", zap.Error(err))
		return
	}

	scanned := 0
	for _, report := range reports {
		if ctx.Err() != nil {
			return
		}
		if report.ValidationStatus != models.StatusPending {
			continue
		}

		candidates, err := s.engine.DetectDuplicates(report.ID)
		if err != nil {
			s.logger.Error("Duplicate scan failed for report",
				zap.String("report_id", report.ID),
				zap.Error(err))
			continue
		}
		scanned++

		if len(candidates) > 0 {
			s.logger.Info("Duplicate candidates found",
				zap.String("report_id", report.ID),
				zap.Int("candidates", len(candidates)),
				zap.Float64("top_score", candidates[0].DuplicateScore))
		}
	}

	s.logger.Debug("Duplicate scan finished", zap.Int("reports_scanned", scanned))
}
