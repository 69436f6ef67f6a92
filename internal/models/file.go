package models

import "time"

// StorageDriver oznacza backend, w którym zapisano bajty pliku.
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type File struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	OriginalName  string    `json:"original_name"`
	StoredName    string    `json:"stored_name"`
	SizeBytes     int64     `json:"size_bytes"`
	MimeType      string    `json:"mime_type"`
	Folder        string    `json:"folder"`
	StorageDriver string    `json:"storage_driver"`
	CreatedAt     time.Time `json:"created_at"`
}
