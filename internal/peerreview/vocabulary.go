package peerreview

import (
	"math"
	"strconv"
	"strings"
)

// RatingLabel is one entry of the categorical contribution scale.
type RatingLabel struct {
	Label string
	Value float64
}

// RatingVocabulary is the closed set of contribution labels, best first.
var RatingVocabulary = []RatingLabel{
	{Label: "most valuable team member", Value: 4},
	{Label: "contributed substantially", Value: 3},
	{Label: "did ok", Value: 2},
	{Label: "did not do enough", Value: 1},
	{Label: "did practically nothing", Value: 0},
}

var ratingByLabel = func() map[string]float64 {
	m := make(map[string]float64, len(RatingVocabulary))
	for _, entry := range RatingVocabulary {
		m[entry.Label] = entry.Value
	}
	return m
}()

// NormalizeRating maps a rating cell to a number. Vocabulary labels are
// matched case-insensitively, otherwise the cell must be a finite number.
// Anything else yields nil.
func NormalizeRating(cell string) *float64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if value, ok := ratingByLabel[strings.ToLower(trimmed)]; ok {
		return &value
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func formatRating(rating *float64) string {
	if rating == nil {
		return ""
	}
	return formatFloat(*rating)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
