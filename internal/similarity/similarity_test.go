package similarity

import (
	"math"
	"testing"
)

func TestGeoDistanceZeroForSamePoint(t *testing.T) {
	if d := GeoDistanceMeters(-12.05, -77.03, -12.05, -77.03); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestGeoDistanceIsSymmetric(t *testing.T) {
	d1 := GeoDistanceMeters(-12.05, -77.03, -12.06, -77.04)
	d2 := GeoDistanceMeters(-12.06, -77.04, -12.05, -77.03)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestGeoDistanceKnownValue(t *testing.T) {
	// One degree of latitude on a 6371 km sphere is ~111.19 km.
	d := GeoDistanceMeters(0, 0, 1, 0)
	if math.Abs(d-111195) > 50 {
		t.Errorf("one degree of latitude = %f m, want ~111195 m", d)
	}
}

func TestGeoDistanceShortRange(t *testing.T) {
	// ~0.00027 degrees of latitude is roughly 30 m.
	d := GeoDistanceMeters(-12.05, -77.03, -12.05027, -77.03)
	if d < 25 || d > 35 {
		t.Errorf("short-range distance = %f m, want ~30 m", d)
	}
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "calor intenso", "calor intenso", 1},
		{"case insensitive", "CALOR", "calor", 1},
		{"disjoint", "abab", "cdcd", 0},
		{"both empty", "", "", 0},
		{"one empty", "calor", "", 0},
		{"single char", "a", "b", 0},
		{"partial", "night", "nacht", 2.0 / 8.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TextSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTextSimilarityRange(t *testing.T) {
	got := TextSimilarity("calor intenso en la plaza", "mucho calor cerca de la plaza")
	if got <= 0.3 || got > 1 {
		t.Errorf("similarity = %f, want in (0.3, 1]", got)
	}
}

func TestTextSimilarityCountsRepeatedBigrams(t *testing.T) {
	// "aaa" has bigrams {aa, aa}; "aa" has {aa}. Overlap is limited by the
	// smaller multiset: 2*1/(2+1).
	got := TextSimilarity("aaa", "aa")
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("multiset overlap = %f, want %f", got, 2.0/3.0)
	}
}
