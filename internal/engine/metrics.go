package engine

import (
	"sort"

	"civicreports/internal/models"
)

// MetricsSummary aggregates portfolio-wide validation statistics.
type MetricsSummary struct {
	TotalReports              int                             `json:"total_reports"`
	CountsByStatus            map[models.ValidationStatus]int `json:"counts_by_status"`
	PercentValidated          float64                         `json:"percent_validated"`
	PercentCommunityValidated float64                         `json:"percent_community_validated"`
	MeanHoursToValidation     float64                         `json:"mean_hours_to_validation"`
	MedianHoursToValidation   float64                         `json:"median_hours_to_validation"`
	ValidatedBySeverity       map[models.Severity]int         `json:"validated_by_severity"`
}

// ComputeMetrics is a pure function over the full report set. An empty set
// yields zeroed percentages and averages rather than NaN.
func ComputeMetrics(reports []*models.Report) MetricsSummary {
	summary := MetricsSummary{
		TotalReports:        len(reports),
		CountsByStatus:      make(map[models.ValidationStatus]int),
		ValidatedBySeverity: make(map[models.Severity]int),
	}

	validated := 0
	communityValidated := 0
	hours := make([]float64, 0, len(reports))

	for _, r := range reports {
		summary.CountsByStatus[r.ValidationStatus]++

		isValidated := r.ValidationStatus == models.StatusCommunityValidated ||
			r.ValidationStatus == models.StatusModeratorValidated
		if !isValidated {
			continue
		}

		validated++
		if r.ValidationStatus == models.StatusCommunityValidated {
			communityValidated++
		}
		summary.ValidatedBySeverity[r.Severity]++

		if r.ValidatedAt != nil {
			hours = append(hours, r.ValidatedAt.Sub(r.ReportedAt).Hours())
		}
	}

	if summary.TotalReports > 0 {
		summary.PercentValidated = 100 * float64(validated) / float64(summary.TotalReports)
		summary.PercentCommunityValidated = 100 * float64(communityValidated) / float64(summary.TotalReports)
	}

	if len(hours) > 0 {
		sum := 0.0
		for _, h := range hours {
			sum += h
		}
		summary.MeanHoursToValidation = sum / float64(len(hours))

		sort.Float64s(hours)
		mid := len(hours) / 2
		if len(hours)%2 == 0 {
			summary.MedianHoursToValidation = (hours[mid-1] + hours[mid]) / 2
		} else {
			summary.MedianHoursToValidation = hours[mid]
		}
	}

	return summary
}

// Metrics computes the summary over every report in the store.
func (e *Engine) Metrics() (MetricsSummary, error) {
	reports, err := e.reports.ListReports()
	if err != nil {
		return MetricsSummary{}, err
	}
	return ComputeMetrics(reports), nil
}
