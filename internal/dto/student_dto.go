package dto

import "github.com/noah-isme/capstone-dashboard-api/internal/models"

// StudentResponse joins a student's roster entry with their sprint records.
// OnRoster is false for students who only appear in peer reviews.
type StudentResponse struct {
	Email                 string                       `json:"email"`
	FullName              string                       `json:"full_name"`
	SourceControlUsername string                       `json:"source_control_username"`
	Project               string                       `json:"project"`
	RepoName              string                       `json:"repo_name"`
	TA                    string                       `json:"ta"`
	FormSubmitted         bool                         `json:"form_submitted"`
	ExperienceSurvey      map[string]string            `json:"experience_survey"`
	OnRoster              bool                         `json:"on_roster"`
	Sprints               []models.StudentSprintRecord `json:"sprints"`
}

// NewStudentResponse builds a response from a roster entry.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		Email:                 student.Email,
		FullName:              student.FullName,
		SourceControlUsername: student.SourceControlUsername,
		Project:               student.Project,
		RepoName:              student.RepoName,
		TA:                    student.TA,
		FormSubmitted:         student.FormSubmitted,
		ExperienceSurvey:      student.ExperienceSurvey,
		OnRoster:              true,
		Sprints:               []models.StudentSprintRecord{},
	}
}
