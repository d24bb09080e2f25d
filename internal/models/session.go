package models

import "time"

// SessionInfo is the client-facing view of an uploaded dataset session.
type SessionInfo struct {
	SessionID        string    `json:"session_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	CreatedAt        time.Time `json:"created_at"`
	LastAccessed     time.Time `json:"last_accessed"`
	Active           bool      `json:"active"`
}
