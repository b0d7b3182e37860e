package duplicate

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"civicreports/internal/models"
	"civicreports/internal/similarity"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

func heatReport(id string, lat, lon float64, description string, reportedAt time.Time) *models.Report {
	return &models.Report{
		ID:               id,
		Category:         models.CategoryHeat,
		Description:      description,
		Latitude:         lat,
		Longitude:        lon,
		Severity:         models.SeverityMedium,
		ReportedAt:       reportedAt,
		ValidationStatus: models.StatusPending,
	}
}

func TestFindCandidatesExampleScenario(t *testing.T) {
	d := newTestDetector(t)
	reportedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	target := heatReport("a", -12.05, -77.03, "calor intenso en la plaza", reportedAt)
	// ~30 m north of the target, two hours later.
	other := heatReport("b", -12.05027, -77.03, "mucho calor cerca de la plaza", reportedAt.Add(2*time.Hour))

	got := d.FindCandidates(target, []*models.Report{other})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	c := got[0]
	if c.DuplicateID != "b" {
		t.Errorf("candidate id = %q, want %q", c.DuplicateID, "b")
	}
	if c.DistanceMeters < 25 || c.DistanceMeters > 35 {
		t.Errorf("distance = %f, want ~30 m", c.DistanceMeters)
	}
	if c.HoursApart != 2 {
		t.Errorf("hours apart = %f, want 2", c.HoursApart)
	}
	if c.TextSimilarity <= 0.3 {
		t.Errorf("text similarity = %f, want > 0.3", c.TextSimilarity)
	}

	textSim := similarity.TextSimilarity(target.Description, other.Description)
	want := 0.4*(1-c.DistanceMeters/100) + 0.3*(1-2.0/48) + 0.3*textSim
	if math.Abs(c.DuplicateScore-want) > 1e-9 {
		t.Errorf("score = %f, want %f", c.DuplicateScore, want)
	}
}

func TestFindCandidatesDistanceFilter(t *testing.T) {
	d := newTestDetector(t)
	reportedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	target := heatReport("a", -12.05, -77.03, "calor intenso en la plaza", reportedAt)
	// ~150 m away: outside the 100 m radius despite matching everything else.
	far := heatReport("b", -12.05135, -77.03, "calor intenso en la plaza", reportedAt.Add(time.Hour))

	if got := d.FindCandidates(target, []*models.Report{far}); len(got) != 0 {
		t.Fatalf("got %d candidates, want 0 (distance filter)", len(got))
	}

	// ~50 m away: inside the radius, so it appears, ranked above a weaker
	// text match at the same distance.
	near := heatReport("c", -12.05045, -77.03, "calor intenso en la plaza", reportedAt.Add(time.Hour))
	weaker := heatReport("d", -12.05045, -77.03, "calor fuerte en otra parte", reportedAt.Add(time.Hour))

	got := d.FindCandidates(target, []*models.Report{weaker, near})
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].DuplicateID != "c" || got[1].DuplicateID != "d" {
		t.Errorf("ranking = [%s, %s], want [c, d]", got[0].DuplicateID, got[1].DuplicateID)
	}
}

func TestFindCandidatesFilters(t *testing.T) {
	d := newTestDetector(t)
	reportedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	target := heatReport("a", -12.05, -77.03, "calor intenso en la plaza", reportedAt)

	self := heatReport("a", -12.05, -77.03, "calor intenso en la plaza", reportedAt)

	otherCategory := heatReport("b", -12.05, -77.03, "calor intenso en la plaza", reportedAt)
	otherCategory.Category = models.CategoryWaste

	alreadyDuplicate := heatReport("c", -12.05, -77.03, "calor intenso en la plaza", reportedAt)
	alreadyDuplicate.ValidationStatus = models.StatusDuplicate

	tooOld := heatReport("d", -12.05, -77.03, "calor intenso en la plaza", reportedAt.Add(-49*time.Hour))

	dissimilar := heatReport("e", -12.05, -77.03, "zzzz qqqq xxxx", reportedAt)

	pool := []*models.Report{self, otherCategory, alreadyDuplicate, tooOld, dissimilar}
	if got := d.FindCandidates(target, pool); len(got) != 0 {
		t.Errorf("got %d candidates, want 0; all pool members should be filtered", len(got))
	}
}

func TestFindCandidatesEmptyPool(t *testing.T) {
	d := newTestDetector(t)
	target := heatReport("a", -12.05, -77.03, "calor", time.Now())
	if got := d.FindCandidates(target, nil); len(got) != 0 {
		t.Errorf("got %d candidates from empty pool, want 0", len(got))
	}
}

func TestCachedCandidates(t *testing.T) {
	d := newTestDetector(t)
	reportedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	target := heatReport("a", -12.05, -77.03, "calor intenso en la plaza", reportedAt)
	other := heatReport("b", -12.05, -77.03, "calor intenso en la plaza", reportedAt.Add(time.Hour))

	if _, ok := d.CachedCandidates("a"); ok {
		t.Fatal("cache should be empty before any detection run")
	}

	want := d.FindCandidates(target, []*models.Report{other})

	got, ok := d.CachedCandidates("a")
	if !ok {
		t.Fatal("expected cached candidates after a detection run")
	}
	if len(got) != len(want) || got[0].DuplicateID != want[0].DuplicateID {
		t.Errorf("cached result differs from detection result")
	}

	d.Invalidate("a")
	if _, ok := d.CachedCandidates("a"); ok {
		t.Error("cache entry should be gone after Invalidate")
	}
}
