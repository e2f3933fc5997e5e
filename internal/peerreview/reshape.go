package peerreview

import (
	"fmt"
	"strings"

	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// PersonalRow is the reflection part of one submitted sprint row.
type PersonalRow struct {
	Row     int
	Email   string
	Answers map[string]string
}

// Rating is one filled team member slot in long form.
type Rating struct {
	Row      int
	Slot     int
	Reviewer string
	Identity string
	Reviewee string
	Rating   *float64
	Comment  string
}

// Reshaped splits a sprint table into reflections and long-form ratings.
type Reshaped struct {
	Personal []PersonalRow
	Ratings  []Rating
	Warnings []string
}

// Reshape splits each sprint row into its reflection answers and its filled
// team member slots. Empty slots are dropped, slots without a recognisable
// email are dropped with a warning, and rows that hold nothing but a counter
// are skipped.
func Reshape(t tabular.Table, layout SprintLayout) (Reshaped, error) {
	if t.Width() <= layout.EmailColumn {
		return Reshaped{}, &DataError{Column: EmailHeader, Reason: "column is missing"}
	}
	if t.Width() < layout.slotStart() {
		missing := layout.Reflection[0]
		if t.Width() > layout.ReflectionStart {
			missing = layout.Reflection[t.Width()-layout.ReflectionStart]
		}
		return Reshaped{}, &DataError{Column: missing.Header, Reason: "column is missing"}
	}

	slots := layout.slotsIn(t.Width())
	out := Reshaped{Warnings: append([]string(nil), t.Warnings...)}

	for _, row := range t.Rows {
		email := strings.TrimSpace(row.Cell(layout.EmailColumn))
		if email == "" {
			if row.BlankExcept(layout.CounterColumn) {
				continue
			}
			return Reshaped{}, &DataError{Row: row.Number, Column: EmailHeader, Reason: "email is required"}
		}

		answers := make(map[string]string, len(layout.Reflection))
		for i, field := range layout.Reflection {
			answers[field.Key] = row.Cell(layout.ReflectionStart + i)
		}
		out.Personal = append(out.Personal, PersonalRow{Row: row.Number, Email: email, Answers: answers})

		for slot := 0; slot < slots; slot++ {
			base := layout.slotStart() + slot*slotWidth
			identity := strings.TrimSpace(row.Cell(base))
			if identity == "" {
				continue
			}
			reviewee, ok := ParseIdentity(identity)
			if !ok {
				out.Warnings = append(out.Warnings, fmt.Sprintf("row %d, team member %d: no email found in %q; slot skipped", row.Number, slot+1, identity))
				continue
			}
			out.Ratings = append(out.Ratings, Rating{
				Row:      row.Number,
				Slot:     slot + 1,
				Reviewer: email,
				Identity: identity,
				Reviewee: reviewee,
				Rating:   NormalizeRating(row.Cell(base + 1)),
				Comment:  row.Cell(base + 2),
			})
		}
	}

	return out, nil
}
