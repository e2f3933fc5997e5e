package models

import "time"

// NotSubmittedSentinel fills every reflection answer of a student who was
// reviewed by teammates but did not submit a peer review themselves.
const NotSubmittedSentinel = "Peer review was not submitted."

// Student is a roster entry. Email identifies the student within a course.
type Student struct {
	ID                    uint              `gorm:"primaryKey" json:"-"`
	CourseName            string            `gorm:"size:128;not null;uniqueIndex:idx_students_course_email" json:"course_name"`
	Email                 string            `gorm:"size:255;not null;uniqueIndex:idx_students_course_email" json:"email"`
	FullName              string            `gorm:"size:255" json:"full_name"`
	SourceControlUsername string            `gorm:"size:255" json:"source_control_username"`
	Project               string            `gorm:"size:255;index" json:"project"`
	RepoName              string            `gorm:"size:255" json:"repo_name"`
	TA                    string            `gorm:"column:ta;size:255" json:"ta"`
	FormSubmitted         bool              `json:"form_submitted"`
	ExperienceSurvey      map[string]string `gorm:"type:text;serializer:json" json:"experience_survey"`
	CreatedAt             time.Time         `json:"-"`
	UpdatedAt             time.Time         `json:"-"`
}

// PeerReview is the rating and comment one reviewer left for a reviewee.
// Rating is nil when the submitted value was not a recognised rating.
type PeerReview struct {
	Rating        *float64 `json:"rating"`
	WhatDidTheyDo string   `json:"what_did_they_do"`
}

// ReceivedReviews maps reviewer email to the review they left.
type ReceivedReviews map[string]PeerReview

// StudentSprintRecord holds one student's peer-review data for one sprint.
type StudentSprintRecord struct {
	ID               uint              `gorm:"primaryKey" json:"-"`
	CourseName       string            `gorm:"size:128;not null;uniqueIndex:idx_sprint_records_key" json:"-"`
	Email            string            `gorm:"size:255;not null;uniqueIndex:idx_sprint_records_key" json:"email"`
	Sprint           int               `gorm:"not null;uniqueIndex:idx_sprint_records_key" json:"sprint"`
	PersonalPeerRev  map[string]string `gorm:"type:text;serializer:json" json:"personal_peer_rev"`
	ReceivedPeerRevs ReceivedReviews   `gorm:"type:text;serializer:json" json:"received_peer_revs"`
	AvgRating        float64           `json:"avg_rating"`
	StddevRating     float64           `json:"stddev_rating"`
	CreatedAt        time.Time         `json:"-"`
	UpdatedAt        time.Time         `json:"-"`
}

// Submitted reports whether the record carries the student's own answers
// rather than the not-submitted placeholder.
func (r StudentSprintRecord) Submitted() bool {
	for _, answer := range r.PersonalPeerRev {
		if answer != NotSubmittedSentinel {
			return true
		}
	}
	return false
}
