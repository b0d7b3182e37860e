// Package duplicate finds reports likely describing the same real-world
// event, using spatial, temporal and textual similarity.
package duplicate

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"civicreports/internal/cache"
	"civicreports/internal/models"
	"civicreports/internal/similarity"
)

// Config holds the detection filters and score weights. The defaults mirror
// long-standing production values; they are configurable but have not been
// calibrated against labeled duplicate pairs.
type Config struct {
	MaxDistanceMeters  float64
	MaxTimeWindowHours float64
	MinTextSimilarity  float64
	DistanceWeight     float64
	TimeWeight         float64
	TextWeight         float64
	CacheSize          int
	CacheTTL           time.Duration
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		MaxDistanceMeters:  100,
		MaxTimeWindowHours: 48,
		MinTextSimilarity:  0.3,
		DistanceWeight:     0.4,
		TimeWeight:         0.3,
		TextWeight:         0.3,
		CacheSize:          500,
		CacheTTL:           15 * time.Minute,
	}
}

// Candidate is one probable duplicate of a target report. Candidates are
// transient; they are cached per target but never stored durably.
type Candidate struct {
	DuplicateID    string  `json:"duplicate_id"`
	DistanceMeters float64 `json:"distance_meters"`
	HoursApart     float64 `json:"hours_apart"`
	TextSimilarity float64 `json:"text_similarity"`
	DuplicateScore float64 `json:"duplicate_score"`
}

// Detector ranks candidate duplicates for a target report. It is read-only
// over the pool it is given and safe for concurrent use.
type Detector struct {
	cfg        Config
	candidates *cache.TTLCache[[]Candidate]
	logger     *zap.Logger
}

// NewDetector creates a detector with the given parameters.
func NewDetector(cfg Config, logger *zap.Logger) (*Detector, error) {
	candidates, err := cache.New[[]Candidate](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg, candidates: candidates, logger: logger}, nil
}

type scoredCandidate struct {
	Candidate
	reportedAt time.Time
}

// FindCandidates applies the hard filters (same category, spatial radius,
// temporal window, minimum text similarity) to the pool, scores survivors by
// the weighted composite, and returns them sorted by descending score. The
// result is cached under the target's id; an empty result is a valid outcome.
func (d *Detector) FindCandidates(target *models.Report, pool []*models.Report) []Candidate {
	scored := make([]scoredCandidate, 0)

	for _, other := range pool {
		if other.ID == target.ID {
			continue
		}
		// A report already marked duplicate cannot itself be a candidate.
		if other.ValidationStatus == models.StatusDuplicate {
			continue
		}
		if other.Category != target.Category {
			continue
		}

		distance := similarity.GeoDistanceMeters(target.Latitude, target.Longitude, other.Latitude, other.Longitude)
		if distance > d.cfg.MaxDistanceMeters {
			continue
		}

		hoursApart := target.ReportedAt.Sub(other.ReportedAt).Hours()
		if hoursApart < 0 {
			hoursApart = -hoursApart
		}
		if hoursApart > d.cfg.MaxTimeWindowHours {
			continue
		}

		textSim := similarity.TextSimilarity(target.Description, other.Description)
		if textSim < d.cfg.MinTextSimilarity {
			continue
		}

		score := d.cfg.DistanceWeight*(1-distance/d.cfg.MaxDistanceMeters) +
			d.cfg.TimeWeight*(1-hoursApart/d.cfg.MaxTimeWindowHours) +
			d.cfg.TextWeight*textSim

		scored = append(scored, scoredCandidate{
			Candidate: Candidate{
				DuplicateID:    other.ID,
				DistanceMeters: distance,
				HoursApart:     hoursApart,
				TextSimilarity: textSim,
				DuplicateScore: score,
			},
			reportedAt: other.ReportedAt,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].DuplicateScore != scored[j].DuplicateScore {
			return scored[i].DuplicateScore > scored[j].DuplicateScore
		}
		return scored[i].reportedAt.After(scored[j].reportedAt)
	})

	result := make([]Candidate, len(scored))
	for i, s := range scored {
		result[i] = s.Candidate
	}

	d.candidates.Set(target.ID, result, d.cfg.CacheTTL)
	d.logger.Debug("Duplicate detection finished",
		zap.String("report_id", target.ID),
		zap.Int("pool_size", len(pool)),
		zap.Int("candidates", len(result)))

	return result
}

// CachedCandidates returns the result of the last detection run for the
// report, if one is cached and not expired.
func (d *Detector) CachedCandidates(reportID string) ([]Candidate, bool) {
	return d.candidates.Get(reportID)
}

// Invalidate drops the cached candidates for a report, e.g. after the report
// was marked duplicate.
func (d *Detector) Invalidate(reportID string) {
	d.candidates.Delete(reportID)
}
