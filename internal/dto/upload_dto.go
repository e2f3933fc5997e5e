package dto

// UploadResponse summarises an accepted roster or sprint upload.
type UploadResponse struct {
	Course     string   `json:"course"`
	Kind       string   `json:"kind"`
	Sprint     int      `json:"sprint"`
	FileName   string   `json:"file_name"`
	MimeType   string   `json:"mime_type"`
	SizeBytes  int64    `json:"size_bytes"`
	Checksum   string   `json:"checksum"`
	ArchiveURL string   `json:"archive_url,omitempty"`
	Records    int      `json:"records"`
	Warnings   []string `json:"warnings"`
}
