package dto

import "time"

// SurveyColumnRequest maps a roster header to an experience survey key.
type SurveyColumnRequest struct {
	Header string `json:"header" validate:"required,max=512"`
	Key    string `json:"key" validate:"required,max=64"`
}

// CourseRequest is the payload for creating a course.
type CourseRequest struct {
	Name                     string                `json:"name" validate:"required,max=128,excludesall=/?#"`
	UseGithub                bool                  `json:"use_github"`
	UseTeamStructure         bool                  `json:"use_team_structure"`
	UseStudentExperienceForm bool                  `json:"use_student_experience_form"`
	SurveyColumns            []SurveyColumnRequest `json:"survey_columns" validate:"omitempty,dive"`
}

// CourseUpdateRequest changes course settings. Nil fields are left as they are.
type CourseUpdateRequest struct {
	UseGithub                *bool                 `json:"use_github"`
	UseTeamStructure         *bool                 `json:"use_team_structure"`
	UseStudentExperienceForm *bool                 `json:"use_student_experience_form"`
	SurveyColumns            []SurveyColumnRequest `json:"survey_columns" validate:"omitempty,dive"`
}

// SprintRequest declares a sprint of a course.
type SprintRequest struct {
	SprintNumber int        `json:"sprint_number" validate:"required,min=1"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	FormsURL     string     `json:"forms_url" validate:"omitempty,url"`
}
