package peerreview

import (
	"math"
	"sort"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

// Summary holds the rating statistics of one reviewee.
type Summary struct {
	Average float64
	StdDev  float64
	Count   int
}

// Aggregation groups long-form ratings by reviewee.
type Aggregation struct {
	// Order lists reviewees in order of first appearance.
	Order     []string
	Received  map[string]models.ReceivedReviews
	Summaries map[string]Summary
}

// Aggregate groups ratings by reviewee and computes the mean and sample
// standard deviation of the numeric ratings each one received. A reviewer
// rating the same reviewee more than once keeps the last rating.
func Aggregate(ratings []Rating) Aggregation {
	agg := Aggregation{
		Received:  make(map[string]models.ReceivedReviews),
		Summaries: make(map[string]Summary),
	}

	for _, rating := range ratings {
		received, ok := agg.Received[rating.Reviewee]
		if !ok {
			received = make(models.ReceivedReviews)
			agg.Received[rating.Reviewee] = received
			agg.Order = append(agg.Order, rating.Reviewee)
		}
		received[rating.Reviewer] = models.PeerReview{Rating: rating.Rating, WhatDidTheyDo: rating.Comment}
	}

	for reviewee, received := range agg.Received {
		values := make([]float64, 0, len(received))
		for _, reviewer := range reviewers(received) {
			if rating := received[reviewer].Rating; rating != nil {
				values = append(values, *rating)
			}
		}
		mean, sd := MeanStdDev(values)
		agg.Summaries[reviewee] = Summary{Average: mean, StdDev: sd, Count: len(values)}
	}

	return agg
}

// MeanStdDev returns the mean and the sample (N-1) standard deviation of
// values. The mean is 0 for no values and the deviation is 0 for fewer than
// two.
func MeanStdDev(values []float64) (mean, sd float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(n-1))
}

// reviewers returns the reviewer emails of received in sorted order.
func reviewers(received models.ReceivedReviews) []string {
	keys := make([]string, 0, len(received))
	for reviewer := range received {
		keys = append(keys, reviewer)
	}
	sort.Strings(keys)
	return keys
}
