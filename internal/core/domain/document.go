package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is an asynchronously ingested certificate and its processing state.
type Document struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	MimeType       string          `json:"mime_type"`
	StoragePath    string          `json:"storage_path"`
	ExpectedFormat DocumentFormat  `json:"expected_format,omitempty"`
	DetectedFormat DocumentFormat  `json:"detected_format,omitempty"`
	Fields         ExtractedRecord `json:"fields,omitempty"`
	Status         DocumentStatus  `json:"status"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
