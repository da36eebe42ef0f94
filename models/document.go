package models

import (
	"time"
)

// Document represents a file submitted against a claim.
// Content is only populated when the bytes are stored inline rather than in blob storage.
type Document struct {
	ID          int64     `json:"id"`
	ClaimID     int64     `json:"claim_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Content     []byte    `json:"-"`
	StoragePath string    `json:"storage_path,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
