package images

import "time"

// Image is a stored memory's metadata record. URL is the primary key;
// Filename is the storage key and always carries the owner's prefix.
type Image struct {
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	MimeType   string    `json:"type,omitempty"`
}

// OwnerPrefix returns the storage key prefix for an owner's images.
func OwnerPrefix(ownerID string) string {
	return ownerID + "/"
}
