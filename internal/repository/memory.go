package repository

import (
	"sort"
	"sync"
	"time"

	"civicreports/internal/models"
)

// MemoryStore is an in-process implementation of all four store interfaces.
// It backs unit tests and the no-database mode; it is also the reference
// semantics for the vote-overwrite and append-only rules.
type MemoryStore struct {
	mu          sync.RWMutex
	reports     map[string]*models.Report
	validations map[string]map[string]*models.Validation // report id -> (user|type) -> vote
	voteOrder   map[string][]string                      // report id -> insertion order of (user|type) keys
	history     map[string][]*models.ChangeHistoryEntry
	moderators  map[string]*models.Moderator
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:     make(map[string]*models.Report),
		validations: make(map[string]map[string]*models.Validation),
		voteOrder:   make(map[string][]string),
		history:     make(map[string][]*models.ChangeHistoryEntry),
		moderators:  make(map[string]*models.Moderator),
	}
}

// PutReport seeds a report, standing in for the external submission API.
func (s *MemoryStore) PutReport(report *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *report
	s.reports[report.ID] = &clone
}

func (s *MemoryStore) GetReport(id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, nil
	}
	clone := *report
	return &clone, nil
}

func (s *MemoryStore) SaveReport(report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

func (s *MemoryStore) ListReports() ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]*models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		clone := *r
		reports = append(reports, &clone)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ReportedAt.After(reports[j].ReportedAt)
	})
	return reports, nil
}

func (s *MemoryStore) ListReportsByCategory(category string) ([]*models.Report, error) {
	all, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Report, 0, len(all))
	for _, r := range all {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *MemoryStore) UpsertValidation(v *models.Validation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes, ok := s.validations[v.ReportID]
	if !ok {
		votes = make(map[string]*models.Validation)
		s.validations[v.ReportID] = votes
	}

	key := v.UserIdentifier + "|" + string(v.ValidationType)
	_, existed := votes[key]
	clone := *v
	if existed {
		// Overwrite keeps the original row id so the entry count is stable.
		clone.ID = votes[key].ID
	} else {
		s.voteOrder[v.ReportID] = append(s.voteOrder[v.ReportID], key)
	}
	votes[key] = &clone

	return !existed, nil
}

func (s *MemoryStore) ListValidations(reportID string) ([]*models.Validation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := s.validations[reportID]
	result := make([]*models.Validation, 0, len(votes))
	for _, key := range s.voteOrder[reportID] {
		clone := *votes[key]
		result = append(result, &clone)
	}
	return result, nil
}

func (s *MemoryStore) AppendEntry(entry *models.ChangeHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *entry
	s.history[entry.ReportID] = append(s.history[entry.ReportID], &clone)
	return nil
}

func (s *MemoryStore) ListEntries(reportID string) ([]*models.ChangeHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*models.ChangeHistoryEntry, 0, len(s.history[reportID]))
	for _, e := range s.history[reportID] {
		clone := *e
		entries = append(entries, &clone)
	}
	return entries, nil
}

func (s *MemoryStore) UpsertModerator(m *models.Moderator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *m
	s.moderators[m.Identifier] = &clone
	return nil
}

func (s *MemoryStore) GetModerator(identifier string) (*models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.moderators[identifier]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (s *MemoryStore) ListModerators() ([]*models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	moderators := make([]*models.Moderator, 0, len(s.moderators))
	for _, m := range s.moderators {
		clone := *m
		moderators = append(moderators, &clone)
	}
	sort.Slice(moderators, func(i, j int) bool {
		return moderators[i].CreatedAt.Before(moderators[j].CreatedAt)
	})
	return moderators, nil
}

func (s *MemoryStore) TouchActivity(identifier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.moderators[identifier]; ok {
		m.LastActivity = &at
	}
	return nil
}
