package peerreview

import (
	"sort"
	"strconv"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// View selects whose reviews fill a row's team member slots on export.
type View string

const (
	// ViewGiven lists the reviews the row's student wrote. Tables exported
	// this way import back to the same records.
	ViewGiven View = "given"
	// ViewReceived lists the reviews the row's student received.
	ViewReceived View = "received"
)

// ParseView maps a query value to a View, defaulting to ViewGiven.
func ParseView(value string) (View, bool) {
	switch View(value) {
	case "", ViewGiven:
		return ViewGiven, true
	case ViewReceived:
		return ViewReceived, true
	default:
		return "", false
	}
}

// ExportOptions controls SprintToTable.
type ExportOptions struct {
	View   View
	Layout SprintLayout
}

type slotEntry struct {
	email  string
	review models.PeerReview
}

// SprintToTable writes sprint records in the sprint file layout. teams maps a
// student email to their team; students missing from it are marked as not on
// the roster. Slots beyond the layout's maximum are dropped.
func SprintToTable(records []models.StudentSprintRecord, teams map[string]string, opts ExportOptions) tabular.Table {
	layout := opts.Layout
	if layout.Reflection == nil {
		layout = DefaultSprintLayout()
	}

	slots := receivedSlots
	if opts.View != ViewReceived {
		slots = givenSlots(records)
	}

	t := tabular.New(layout.Header(), nil)
	written := make(map[string]bool, len(records))
	for _, record := range records {
		written[record.Email] = true
		t.Append(sprintRow(len(t.Rows), record, teams, slots(record), layout)...)
	}

	if opts.View != ViewReceived {
		for _, orphan := range orphanReviewers(records, written) {
			record := models.StudentSprintRecord{Email: orphan}
			t.Append(sprintRow(len(t.Rows), record, teams, slots(record), layout)...)
		}
	}

	return t
}

func sprintRow(count int, record models.StudentSprintRecord, teams map[string]string, entries []slotEntry, layout SprintLayout) []string {
	cells := make([]string, 0, len(layout.Header()))

	team, ok := teams[record.Email]
	if !ok {
		team = MissingTeamSentinel
	}
	cells = append(cells, strconv.Itoa(count), record.Email, team)

	for _, field := range layout.Reflection {
		cells = append(cells, record.PersonalPeerRev[field.Key])
	}

	for i := 0; i < layout.MaxSlots; i++ {
		if i >= len(entries) {
			cells = append(cells, "", "", "")
			continue
		}
		entry := entries[i]
		cells = append(cells, entry.email, formatRating(entry.review.Rating), entry.review.WhatDidTheyDo)
	}

	return append(cells, formatFloat(record.AvgRating), formatFloat(record.StddevRating))
}

func receivedSlots(record models.StudentSprintRecord) []slotEntry {
	entries := make([]slotEntry, 0, len(record.ReceivedPeerRevs))
	for _, reviewer := range reviewers(record.ReceivedPeerRevs) {
		entries = append(entries, slotEntry{email: reviewer, review: record.ReceivedPeerRevs[reviewer]})
	}
	return entries
}

// givenSlots inverts the received reviews of every record so that each
// reviewer's slots follow record order.
func givenSlots(records []models.StudentSprintRecord) func(models.StudentSprintRecord) []slotEntry {
	given := make(map[string][]slotEntry)
	for _, record := range records {
		for _, reviewer := range reviewers(record.ReceivedPeerRevs) {
			given[reviewer] = append(given[reviewer], slotEntry{email: record.Email, review: record.ReceivedPeerRevs[reviewer]})
		}
	}
	return func(record models.StudentSprintRecord) []slotEntry {
		return given[record.Email]
	}
}

// orphanReviewers returns reviewers without a record of their own, sorted.
func orphanReviewers(records []models.StudentSprintRecord, written map[string]bool) []string {
	seen := make(map[string]bool)
	var orphans []string
	for _, record := range records {
		for reviewer := range record.ReceivedPeerRevs {
			if written[reviewer] || seen[reviewer] {
				continue
			}
			seen[reviewer] = true
			orphans = append(orphans, reviewer)
		}
	}
	sort.Strings(orphans)
	return orphans
}
