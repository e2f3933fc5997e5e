// Package peerreview converts roster and sprint peer-review spreadsheets into
// student records and back. Parsing and export share the column layouts in
// this file so that an exported table can be imported again unchanged.
package peerreview

import (
	"strconv"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// Column headers shared by the roster and sprint layouts.
const (
	EmailHeader         = "Email Address"
	CountHeader         = "Count"
	TeamHeader          = "Team"
	AverageHeader       = "Average peer review rating"
	StdDevHeader        = "Peer review rating standard deviation"
	MissingTeamSentinel = "This student does not appear in the roster."
)

const (
	slotMemberHeader  = "Choose a team member-"
	slotRatingHeader  = "How would you rate their contribution?"
	slotCommentHeader = "Please provide your reasons for this rating and share more details about their contribution."
	slotWidth         = 3
)

// RosterColumn binds a fixed roster header to a Student field.
type RosterColumn struct {
	Header string
	get    func(models.Student) string
	set    func(*models.Student, string)
}

// RosterColumns lists the fixed roster columns in file order.
var RosterColumns = []RosterColumn{
	{Header: EmailHeader, get: func(s models.Student) string { return s.Email }, set: func(s *models.Student, v string) { s.Email = v }},
	{Header: "Full name (preferred)", get: func(s models.Student) string { return s.FullName }, set: func(s *models.Student, v string) { s.FullName = v }},
	{Header: "Github Account", get: func(s models.Student) string { return s.SourceControlUsername }, set: func(s *models.Student, v string) { s.SourceControlUsername = v }},
	{Header: "Project", get: func(s models.Student) string { return s.Project }, set: func(s *models.Student, v string) { s.Project = v }},
	{Header: "Github repo", get: func(s models.Student) string { return s.RepoName }, set: func(s *models.Student, v string) { s.RepoName = v }},
	{Header: "TA", get: func(s models.Student) string { return s.TA }, set: func(s *models.Student, v string) { s.TA = v }},
}

// DefaultSurveyColumns is the experience survey used when a course does not
// define its own.
var DefaultSurveyColumns = []models.SurveyColumn{
	{Header: "Coursework", Key: "course_work"},
	{Header: "Please describe your experience with other languages and development tools", Key: "langs"},
	{Header: "What do you hope to get out of your CMPUT 401 experience?", Key: "hopes"},
	{Header: "Do you expect CMPUT 401 to be any different than your prior courses? If so, how?", Key: "diffs"},
	{Header: "Experience", Key: "experience"},
}

// RosterLayout describes a roster file: the fixed columns followed by the
// course's survey columns.
type RosterLayout struct {
	Survey []models.SurveyColumn
}

// RosterLayoutFor returns the layout for a course, falling back to the
// default survey when the course has none configured.
func RosterLayoutFor(course models.Course) RosterLayout {
	if len(course.SurveyColumns) == 0 {
		return RosterLayout{Survey: DefaultSurveyColumns}
	}
	return RosterLayout{Survey: course.SurveyColumns}
}

// Expectations returns the header positions the roster reader enforces.
func (l RosterLayout) Expectations() []tabular.Expect {
	return []tabular.Expect{{Index: 0, Name: EmailHeader}}
}

// Header returns the full roster header in file order.
func (l RosterLayout) Header() []string {
	header := make([]string, 0, len(RosterColumns)+len(l.Survey))
	for _, column := range RosterColumns {
		header = append(header, column.Header)
	}
	for _, column := range l.Survey {
		header = append(header, column.Header)
	}
	return header
}

// ReflectionField binds a personal reflection question to its record key.
type ReflectionField struct {
	Key    string
	Header string
}

const learningPrompt = "Please respond to each of the following items in terms of how true it is for you with respect to your learning software development through this sprint "

// ReflectionFields lists the personal reflection columns in file order.
var ReflectionFields = []ReflectionField{
	{Key: "meeting_participation", Header: "In how many meetings did you participate during this past sprint?"},
	{Key: "meeting_content", Header: "What was discussed/decided in these meetings?"},
	{Key: "missed_meetings", Header: "Were there other team meetings that you missed?"},
	{Key: "project_appropriate", Header: "Do you think that this project is appropriate (in complexity and scope) for the course?"},
	{Key: "confident_to_learn_sd", Header: learningPrompt + "[I feel confident in my ability to learn software development]"},
	{Key: "capable_to_learn_sd", Header: learningPrompt + "[I am capable of learning software development]"},
	{Key: "able_to_achieve_learning_goals", Header: learningPrompt + "[I am able to achieve my software development learning goals]"},
	{Key: "able_to_meet_sd_challenge", Header: learningPrompt + "[I feel able to meet the challenge of performing well when developing software.]"},
	{Key: "students_care", Header: "I feel that students in this course care about each other"},
	{Key: "connected_with_others", Header: "I feel connected to others in this course"},
	{Key: "hard_to_get_help", Header: "I feel that it is hard to get help when I have a question"},
	{Key: "uneasy_exposing_gaps", Header: "I feel uneasy exposing gaps in my understanding"},
	{Key: "reluctant_to_speak_openly", Header: "I feel reluctant to speak openly"},
	{Key: "can_rely_on_others", Header: "I feel that I can rely on others in this course"},
	{Key: "given_opportunities_to_learn", Header: "I feel that I am given ample opportunities to learn"},
	{Key: "confident_others_will_support_me", Header: "I feel confident that others will support me"},
}

// SprintLayout is the positional layout of a sprint peer-review file:
// counter, email, team, the reflection block and then repeating
// (team member, rating, comment) slot groups.
type SprintLayout struct {
	CounterColumn   int
	EmailColumn     int
	TeamColumn      int
	ReflectionStart int
	Reflection      []ReflectionField
	// MaxSlots caps how many slot groups are read and exactly how many are written.
	MaxSlots int
}

// DefaultSprintLayout returns the layout of the course peer-review form.
func DefaultSprintLayout() SprintLayout {
	return SprintLayout{
		CounterColumn:   0,
		EmailColumn:     1,
		TeamColumn:      2,
		ReflectionStart: 3,
		Reflection:      ReflectionFields,
		MaxSlots:        7,
	}
}

// Expectations returns the header positions the sprint reader enforces.
func (l SprintLayout) Expectations() []tabular.Expect {
	return []tabular.Expect{{Index: l.EmailColumn, Name: EmailHeader}}
}

func (l SprintLayout) slotStart() int {
	return l.ReflectionStart + len(l.Reflection)
}

// slotsIn returns how many complete slot groups a table of the given width holds.
func (l SprintLayout) slotsIn(width int) int {
	slots := (width - l.slotStart()) / slotWidth
	if slots < 0 {
		return 0
	}
	if slots > l.MaxSlots {
		return l.MaxSlots
	}
	return slots
}

// Header returns the export header: counter, email, team, reflection
// questions, MaxSlots slot groups and the two statistics columns.
func (l SprintLayout) Header() []string {
	header := make([]string, 0, l.slotStart()+l.MaxSlots*slotWidth+2)
	header = append(header, CountHeader, EmailHeader, TeamHeader)
	for _, field := range l.Reflection {
		header = append(header, field.Header)
	}
	for i := 1; i <= l.MaxSlots; i++ {
		n := strconv.Itoa(i)
		header = append(header, slotMemberHeader+n, slotRatingHeader+n, slotCommentHeader+n)
	}
	return append(header, AverageHeader, StdDevHeader)
}
