package peerreview

import (
	"fmt"
	"strings"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// RosterData is the outcome of parsing a roster table.
type RosterData struct {
	Students []models.Student
	Warnings []string
}

// ParseRoster maps roster rows to students of the given course. Columns other
// than the email are optional and read as empty when absent. Rows repeating an
// email replace the earlier row's values.
func ParseRoster(t tabular.Table, course string, layout RosterLayout) (RosterData, error) {
	if _, ok := t.Column(EmailHeader); !ok {
		return RosterData{}, &DataError{Column: EmailHeader, Reason: "column is missing"}
	}

	data := RosterData{Warnings: append([]string(nil), t.Warnings...)}
	for _, header := range layout.Header() {
		if _, ok := t.Column(header); !ok {
			data.Warnings = append(data.Warnings, fmt.Sprintf("column %q not found; values left empty", header))
		}
	}

	position := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		student := models.Student{
			CourseName:       course,
			FormSubmitted:    false,
			ExperienceSurvey: make(map[string]string, len(layout.Survey)),
		}
		for _, column := range RosterColumns {
			value, _ := row.Value(column.Header)
			column.set(&student, strings.TrimSpace(value))
		}
		for _, column := range layout.Survey {
			value, _ := row.Value(column.Header)
			student.ExperienceSurvey[column.Key] = value
		}

		if student.Email == "" {
			return RosterData{}, &DataError{Row: row.Number, Column: EmailHeader, Reason: "email is required"}
		}

		if i, seen := position[student.Email]; seen {
			data.Students[i] = student
			continue
		}
		position[student.Email] = len(data.Students)
		data.Students = append(data.Students, student)
	}

	return data, nil
}

// RosterToTable converts students back into the roster layout.
func RosterToTable(students []models.Student, layout RosterLayout) tabular.Table {
	t := tabular.New(layout.Header(), nil)
	for _, student := range students {
		cells := make([]string, 0, len(RosterColumns)+len(layout.Survey))
		for _, column := range RosterColumns {
			cells = append(cells, column.get(student))
		}
		for _, column := range layout.Survey {
			cells = append(cells, student.ExperienceSurvey[column.Key])
		}
		t.Append(cells...)
	}
	return t
}
