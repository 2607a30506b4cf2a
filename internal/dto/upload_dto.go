package dto

import "github.com/google/uuid"

type IssueUploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type"`
}

type IssueUploadURLResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	UploadURL  string    `json:"upload_url"`
	Key        string    `json:"key"`
	ExpiresIn  int       `json:"expires_in"`
}
