package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ingestion kinds.
const (
	IngestionKindRoster = "roster"
	IngestionKindSprint = "sprint"
)

// IngestionLog records an accepted roster or sprint upload.
type IngestionLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	CourseName string            `gorm:"size:128;not null;index" json:"course_name"`
	Kind       string            `gorm:"size:16;not null" json:"kind"`
	Sprint     int               `json:"sprint"`
	FileName   string            `gorm:"size:255;not null" json:"file_name"`
	ArchiveURL string            `gorm:"size:512" json:"archive_url,omitempty"`
	MimeType   string            `gorm:"size:128" json:"mime_type"`
	SizeBytes  int64             `json:"size_bytes"`
	Checksum   string            `gorm:"size:128;index" json:"checksum"`
	Records    int               `json:"records"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
