// Package similarity provides the pure distance and text comparison
// functions used by duplicate detection.
package similarity

import (
	"math"
	"strings"
)

// Earth's mean radius in meters.
const earthRadiusMeters = 6371000.0

// GeoDistanceMeters returns the great-circle (haversine) distance between two
// WGS84 coordinates, in meters.
func GeoDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// TextSimilarity returns the bigram Dice coefficient between two strings,
// in [0,1]. Comparison is case-insensitive; whitespace and punctuation are
// kept as-is. Strings too short to produce bigrams score 0.
func TextSimilarity(a, b string) float64 {
	bigramsA := bigrams(strings.ToLower(a))
	bigramsB := bigrams(strings.ToLower(b))
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	counts := make(map[string]int, len(bigramsA))
	for _, g := range bigramsA {
		counts[g]++
	}

	overlap := 0
	for _, g := range bigramsB {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(bigramsA)+len(bigramsB))
}

// bigrams returns the multiset of adjacent character pairs of s.
func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}
