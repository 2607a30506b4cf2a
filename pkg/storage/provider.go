package storage

import "context"

// UploadTicket is a short-lived authorization to upload one object.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// Provider abstracts the blob store holding raw document bytes.
type Provider interface {
	// IssueUploadURL returns a ticket the client uses to PUT the object.
	IssueUploadURL(ctx context.Context, key string) (*UploadTicket, error)

	// Write stores object bytes under key.
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the object bytes stored under key.
	Read(ctx context.Context, key string) ([]byte, error)
}
