package model

import "time"

// Document represents an uploaded PDF stored by the system.
// The raw bytes live in object storage under StoragePath; this record holds
// the metadata that resolves a document id back to those bytes. It is a pure
// domain model with no database-specific dependencies or tags, so it can be
// used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
