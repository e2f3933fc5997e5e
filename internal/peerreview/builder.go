package peerreview

import (
	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// SprintData is the outcome of parsing a sprint peer-review table.
type SprintData struct {
	Records  []models.StudentSprintRecord
	Warnings []string
}

// ParseSprint reshapes a sprint table and builds one record per student who
// submitted a review or was named in one.
func ParseSprint(t tabular.Table, sprint int, layout SprintLayout) (SprintData, error) {
	reshaped, err := Reshape(t, layout)
	if err != nil {
		return SprintData{}, err
	}
	return SprintData{
		Records:  BuildSprintRecords(reshaped, sprint, layout),
		Warnings: reshaped.Warnings,
	}, nil
}

// BuildSprintRecords joins reflections with aggregated ratings. Submitters
// come first in input order, followed by reviewees who did not submit in the
// order they were first named. A student submitting twice keeps the first
// position with the last answers.
func BuildSprintRecords(r Reshaped, sprint int, layout SprintLayout) []models.StudentSprintRecord {
	agg := Aggregate(r.Ratings)

	records := make([]models.StudentSprintRecord, 0, len(r.Personal)+len(agg.Order))
	position := make(map[string]int, len(r.Personal))

	for _, personal := range r.Personal {
		if i, seen := position[personal.Email]; seen {
			records[i].PersonalPeerRev = personal.Answers
			continue
		}
		position[personal.Email] = len(records)
		records = append(records, models.StudentSprintRecord{
			Email:           personal.Email,
			Sprint:          sprint,
			PersonalPeerRev: personal.Answers,
		})
	}

	for _, reviewee := range agg.Order {
		if _, seen := position[reviewee]; seen {
			continue
		}
		position[reviewee] = len(records)
		records = append(records, models.StudentSprintRecord{
			Email:           reviewee,
			Sprint:          sprint,
			PersonalPeerRev: notSubmitted(layout),
		})
	}

	for i := range records {
		received, ok := agg.Received[records[i].Email]
		if !ok {
			received = make(models.ReceivedReviews)
		}
		summary := agg.Summaries[records[i].Email]
		records[i].ReceivedPeerRevs = received
		records[i].AvgRating = summary.Average
		records[i].StddevRating = summary.StdDev
	}

	return records
}

func notSubmitted(layout SprintLayout) map[string]string {
	answers := make(map[string]string, len(layout.Reflection))
	for _, field := range layout.Reflection {
		answers[field.Key] = models.NotSubmittedSentinel
	}
	return answers
}
