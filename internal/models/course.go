package models

import "time"

// SurveyColumn maps a roster header to a key of Student.ExperienceSurvey.
type SurveyColumn struct {
	Header string `json:"header"`
	Key    string `json:"key"`
}

// Course groups the roster and sprints of one course offering.
type Course struct {
	ID                       uint           `gorm:"primaryKey" json:"-"`
	Name                     string         `gorm:"size:128;uniqueIndex;not null" json:"name"`
	RosterFileName           string         `gorm:"size:255" json:"roster_file_name"`
	UseGithub                bool           `json:"use_github"`
	UseTeamStructure         bool           `json:"use_team_structure"`
	UseStudentExperienceForm bool           `json:"use_student_experience_form"`
	SurveyColumns            []SurveyColumn `gorm:"type:text;serializer:json" json:"survey_columns,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}

// Sprint stores metadata about a course sprint and its uploaded file.
type Sprint struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	CourseName     string     `gorm:"size:128;not null;uniqueIndex:idx_sprints_course_number" json:"-"`
	SprintNumber   int        `gorm:"not null;uniqueIndex:idx_sprints_course_number" json:"sprint_number"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	SprintFileName string     `gorm:"size:255" json:"sprint_file_name"`
	FormsURL       string     `gorm:"size:1024" json:"forms_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
