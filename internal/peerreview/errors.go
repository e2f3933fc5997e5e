package peerreview

import "fmt"

// DataError describes a problem in an uploaded file that staff must fix
// before re-uploading. Row is the 1-based file line, or 0 for the header.
type DataError struct {
	Row    int
	Column string
	Reason string
}

func (e *DataError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Reason)
}
