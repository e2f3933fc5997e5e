package service

import (
	"errors"

	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseExists indicates a course with the same name already exists.
	ErrCourseExists = errors.New("course already exists")
	// ErrSprintExists indicates the sprint was already declared for the course.
	ErrSprintExists = errors.New("sprint already exists")
	// ErrStudentNotFound indicates no roster entry or sprint record matched.
	ErrStudentNotFound = errors.New("student not found")
	// ErrInvalidSprint indicates a negative or otherwise unusable sprint number.
	ErrInvalidSprint = errors.New("invalid sprint number")
	// ErrUploadRequired indicates the request carried no file.
	ErrUploadRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is neither CSV nor a workbook.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadUnreadable indicates the file could not be parsed as a table.
	ErrUploadUnreadable = errors.New("file could not be read as a spreadsheet")
)

// IsDataError reports whether err describes a problem in the uploaded file
// itself, such as a missing column or a row without an email.
func IsDataError(err error) bool {
	var dataErr *peerreview.DataError
	var columnErr *tabular.ColumnError
	return errors.As(err, &dataErr) || errors.As(err, &columnErr) || errors.Is(err, tabular.ErrNoHeader)
}
