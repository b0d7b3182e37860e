// Package engine implements the community report validation core: the
// validation ledger, the report state machine, moderator overrides, the
// audit trail and portfolio metrics. All state lives behind the injected
// stores; the engine itself holds no durable data.
package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civicreports/internal/duplicate"
	"civicreports/internal/identity"
	"civicreports/internal/models"
	"civicreports/internal/repository"
)

// Config holds the community decision thresholds.
type Config struct {
	ConfirmationsThreshold int
	RejectionsThreshold    int
	DuplicatesThreshold    int
	SeverityVotesThreshold int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ConfirmationsThreshold: 3,
		RejectionsThreshold:    3,
		DuplicatesThreshold:    2,
		SeverityVotesThreshold: 2,
	}
}

// Engine coordinates votes, state transitions and audit entries. Writes to a
// given report are serialized through a per-report mutex so two votes racing
// to cross a threshold cannot lose updates; votes on different reports
// proceed in parallel.
type Engine struct {
	reports     repository.ReportStore
	validations repository.ValidationStore
	history     repository.HistoryStore
	moderators  repository.ModeratorStore
	detector    *duplicate.Detector
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine over the given stores and detector.
func New(
	reports repository.ReportStore,
	validations repository.ValidationStore,
	history repository.HistoryStore,
	moderators repository.ModeratorStore,
	detector *duplicate.Detector,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		reports:     reports,
		validations: validations,
		history:     history,
		moderators:  moderators,
		detector:    detector,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (e *Engine) reportLock(reportID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[reportID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[reportID] = lock
	}
	return lock
}

// VotePayload carries the optional vote fields.
type VotePayload struct {
	Comment     string
	NewSeverity *models.Severity
	DuplicateOf *string
}

// VoteOutcome reports the ledger state after a vote was recorded.
type VoteOutcome struct {
	ReportID        string                  `json:"report_id"`
	IsNewResponse   bool                    `json:"is_new_response"`
	ConfirmedCount  int                     `json:"confirmed_count"`
	RejectedCount   int                     `json:"rejected_count"`
	DuplicateCount  int                     `json:"duplicate_count"`
	ValidationScore int                     `json:"validation_score"`
	Status          models.ValidationStatus `json:"validation_status"`
	Severity        models.Severity         `json:"severity"`
}

// SubmitVote records one user's vote on a report, recomputes the derived
// counters and evaluates the state machine. Resubmitting the same
// (user, type) vote overwrites the prior payload instead of accumulating,
// so one user's influence per vote dimension is capped at one unit.
func (e *Engine) SubmitVote(reportID, rawIdentifier string, voteType models.ValidationType, payload VotePayload) (*VoteOutcome, error) {
	if strings.TrimSpace(rawIdentifier) == "" {
		return nil, ErrEmptyIdentifier
	}
	if !voteType.Valid() {
		return nil, fmt.Errorf("%w: unknown validation type %q", ErrInvalidPayload, voteType)
	}
	if voteType == models.ValidationUpdateSeverity {
		if payload.NewSeverity == nil {
			return nil, fmt.Errorf("%w: new_severity is required for severity votes", ErrInvalidPayload)
		}
		if !payload.NewSeverity.Valid() {
			return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidPayload, *payload.NewSeverity)
		}
	}

	lock := e.reportLock(reportID)
	lock.Lock()
	defer lock.Unlock()

	report, err := e.reports.GetReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	token := identity.Hash(rawIdentifier)
	vote := &models.Validation{
		ID:             uuid.NewString(),
		ReportID:       reportID,
		UserIdentifier: token,
		ValidationType: voteType,
		Comment:        payload.Comment,
		NewSeverity:    payload.NewSeverity,
		DuplicateOf:    payload.DuplicateOf,
		CreatedAt:      e.now(),
	}

	isNew, err := e.validations.UpsertValidation(vote)
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	votes, err := e.validations.ListValidations(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	recountVotes(report, votes)

	if err := e.applySeverityPlurality(report, votes); err != nil {
		return nil, err
	}

	if report.ValidationStatus == models.StatusPending {
		if err := e.evaluateThresholds(report, votes); err != nil {
			return nil, err
		}
	}

	if err := e.reports.SaveReport(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	e.logger.Info("Vote recorded",
		zap.String("report_id", reportID),
		zap.String("validation_type", string(voteType)),
		zap.Bool("is_new_response", isNew),
		zap.String("status", string(report.ValidationStatus)))

	return &VoteOutcome{
		ReportID:        reportID,
		IsNewResponse:   isNew,
		ConfirmedCount:  report.ConfirmedCount,
		RejectedCount:   report.RejectedCount,
		DuplicateCount:  report.DuplicateCount,
		ValidationScore: report.ValidationScore,
		Status:          report.ValidationStatus,
		Severity:        report.Severity,
	}, nil
}

// recountVotes rederives the counters from the ledger. Votes are already
// distinct per (user, type), so plain counts are per-user counts.
func recountVotes(report *models.Report, votes []*models.Validation) {
	confirmed, rejected, duplicates := 0, 0, 0
	for _, v := range votes {
		switch v.ValidationType {
		case models.ValidationConfirm:
			confirmed++
		case models.ValidationReject:
			rejected++
		case models.ValidationDuplicate:
			duplicates++
		case models.ValidationUpdateSeverity:
			// Tallied separately by the plurality rule.
		}
	}
	report.ConfirmedCount = confirmed
	report.RejectedCount = rejected
	report.DuplicateCount = duplicates
	report.ValidationScore = confirmed - rejected
}

// applySeverityPlurality updates the report severity when the plurality
// severity has enough supporting votes and differs from the current value.
// Ties produce no winner and no change. Severity may still be corrected
// after the report has left pending.
func (e *Engine) applySeverityPlurality(report *models.Report, votes []*models.Validation) error {
	winner, ok := pluralitySeverity(votes, e.cfg.SeverityVotesThreshold)
	if !ok || winner == report.Severity {
		return nil
	}

	old := report.Severity
	report.Severity = winner
	return e.appendHistory(report.ID, models.ChangeSeverity, string(old), string(winner),
		models.ActorCommunity, "severity plurality reached")
}

func pluralitySeverity(votes []*models.Validation, threshold int) (models.Severity, bool) {
	tally := make(map[models.Severity]int)
	for _, v := range votes {
		if v.ValidationType == models.ValidationUpdateSeverity && v.NewSeverity != nil {
			tally[*v.NewSeverity]++
		}
	}

	var winner models.Severity
	best := 0
	tied := false
	for _, s := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh} {
		switch {
		case tally[s] > best:
			winner, best, tied = s, tally[s], false
		case tally[s] == best && best > 0:
			tied = true
		}
	}

	if tied || best < threshold {
		return "", false
	}
	return winner, true
}

// evaluateThresholds transitions a pending report when a community threshold
// is crossed. Precedence: duplicate > rejected > confirmed, since a redundant
// report is redundant regardless of its truthfulness.
func (e *Engine) evaluateThresholds(report *models.Report, votes []*models.Validation) error {
	now := e.now()

	switch {
	case report.DuplicateCount >= e.cfg.DuplicatesThreshold:
		report.ValidationStatus = models.StatusDuplicate
		report.IsDuplicateOf = mostCitedDuplicate(votes)
		e.markValidated(report, models.ActorCommunity, now)
		if e.detector != nil {
			e.detector.Invalidate(report.ID)
		}
		return e.appendHistory(report.ID, models.ChangeDuplicateMarked,
			string(models.StatusPending), string(models.StatusDuplicate),
			models.ActorCommunity, "duplicate votes threshold reached")

	case report.RejectedCount >= e.cfg.RejectionsThreshold:
		report.ValidationStatus = models.StatusRejected
		e.markValidated(report, models.ActorCommunity, now)
		return e.appendHistory(report.ID, models.ChangeStatus,
			string(models.StatusPending), string(models.StatusRejected),
			models.ActorCommunity, "rejection votes threshold reached")

	case report.ConfirmedCount >= e.cfg.ConfirmationsThreshold:
		report.ValidationStatus = models.StatusCommunityValidated
		e.markValidated(report, models.ActorCommunity, now)
		return e.appendHistory(report.ID, models.ChangeValidated,
			string(models.StatusPending), string(models.StatusCommunityValidated),
			models.ActorCommunity, "confirmation votes threshold reached")
	}

	return nil
}

// markValidated sets validated_at/validated_by once, at the first transition
// out of pending.
func (e *Engine) markValidated(report *models.Report, actor string, at time.Time) {
	if report.ValidatedAt != nil {
		return
	}
	report.ValidatedAt = &at
	report.ValidatedBy = &actor
}

// mostCitedDuplicate returns the duplicate_of value cited by the most
// duplicate votes; ties resolve to the lexicographically smallest id so the
// outcome is deterministic.
func mostCitedDuplicate(votes []*models.Validation) *string {
	counts := make(map[string]int)
	for _, v := range votes {
		if v.ValidationType == models.ValidationDuplicate && v.DuplicateOf != nil && *v.DuplicateOf != "" {
			counts[*v.DuplicateOf]++
		}
	}

	var winner string
	best := 0
	for id, n := range counts {
		if n > best || (n == best && (winner == "" || id < winner)) {
			winner, best = id, n
		}
	}

	if winner == "" {
		return nil
	}
	return &winner
}

func (e *Engine) appendHistory(reportID string, changeType models.ChangeType, oldValue, newValue, changedBy, reason string) error {
	entry := &models.ChangeHistoryEntry{
		ID:         uuid.NewString(),
		ReportID:   reportID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
		Reason:     reason,
		CreatedAt:  e.now(),
	}
	if err := e.history.AppendEntry(entry); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ModeratorSetStatus is the authoritative override: it requires an active
// moderator and a reason, and always succeeds regardless of the current
// status, including re-opening a report to pending.
func (e *Engine) ModeratorSetStatus(reportID, moderatorID string, newStatus models.ValidationStatus, reason string, newSeverity *models.Severity, duplicateOf *string) (*models.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required for moderator actions", ErrInvalidPayload)
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown validation status %q", ErrInvalidPayload, newStatus)
	}
	if newSeverity != nil && !newSeverity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidPayload, *newSeverity)
	}

	moderator, err := e.moderators.GetModerator(moderatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load moderator: %w", err)
	}
	if moderator == nil || !moderator.Active {
		return nil, ErrUnauthorized
	}

	lock := e.reportLock(reportID)
	lock.Lock()
	defer lock.Unlock()

	report, err := e.reports.GetReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	now := e.now()
	oldStatus := report.ValidationStatus

	report.ValidationStatus = newStatus
	if newStatus == models.StatusDuplicate {
		if duplicateOf != nil && *duplicateOf != "" {
			report.IsDuplicateOf = duplicateOf
		}
	} else {
		report.IsDuplicateOf = nil
	}
	report.ValidatedAt = &now
	report.ValidatedBy = &moderatorID

	if newSeverity != nil && *newSeverity != report.Severity {
		old := report.Severity
		report.Severity = *newSeverity
		if err := e.appendHistory(reportID, models.ChangeSeverity, string(old), string(*newSeverity), moderatorID, reason); err != nil {
			return nil, err
		}
	}

	if err := e.appendHistory(reportID, models.ChangeModerated, string(oldStatus), string(newStatus), moderatorID, reason); err != nil {
		return nil, err
	}

	if err := e.reports.SaveReport(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	if err := e.moderators.TouchActivity(moderatorID, now); err != nil {
		e.logger.Warn("Failed to update moderator activity",
			zap.String("moderator", moderatorID),
			zap.Error(err))
	}

	e.logger.Info("Moderator override applied",
		zap.String("report_id", reportID),
		zap.String("moderator", moderatorID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)))

	return report, nil
}

// AddModerator registers or updates a moderator. Adding an existing
// identifier overwrites prior info.
func (e *Engine) AddModerator(m *models.Moderator) error {
	if strings.TrimSpace(m.Identifier) == "" {
		return fmt.Errorf("%w: moderator identifier is required", ErrInvalidPayload)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = e.now()
	}
	return e.moderators.UpsertModerator(m)
}

// IsModerator reports whether identifier names an active moderator.
func (e *Engine) IsModerator(identifier string) (bool, error) {
	m, err := e.moderators.GetModerator(identifier)
	if err != nil {
		return false, err
	}
	return m != nil && m.Active, nil
}

// ListModerators returns the full registry, deactivated entries included.
func (e *Engine) ListModerators() ([]*models.Moderator, error) {
	return e.moderators.ListModerators()
}

// GetValidationState returns the report's current counters and status.
func (e *Engine) GetValidationState(reportID string) (*models.Report, error) {
	report, err := e.reports.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// GetHistory returns the report's audit entries in insertion order. Orphaned
// history (report since deleted externally) is still served.
func (e *Engine) GetHistory(reportID string) ([]*models.ChangeHistoryEntry, error) {
	return e.history.ListEntries(reportID)
}

// DetectDuplicates runs duplicate detection for a report against the
// same-category pool and caches the result. An empty list is a valid
// outcome, not an error.
func (e *Engine) DetectDuplicates(reportID string) ([]duplicate.Candidate, error) {
	report, err := e.reports.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	pool, err := e.reports.ListReportsByCategory(report.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	return e.detector.FindCandidates(report, pool), nil
}

// GetDuplicateCandidates serves the cached result of the last detection run,
// falling back to a fresh run when nothing is cached.
func (e *Engine) GetDuplicateCandidates(reportID string) ([]duplicate.Candidate, error) {
	if candidates, ok := e.detector.CachedCandidates(reportID); ok {
		return candidates, nil
	}
	return e.DetectDuplicates(reportID)
}
