package dto

import "github.com/google/uuid"

type ChatRequest struct {
	Query     string     `json:"query" validate:"required"`
	DocId     *uuid.UUID `json:"doc_id"`
	SessionId string     `json:"session_id"`
}

type SourceMetadata struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type ChatSource struct {
	Ordinal  int            `json:"ordinal"`
	Metadata SourceMetadata `json:"metadata"`
	Score    float64        `json:"score"`
}

type ChatResponse struct {
	SessionId string       `json:"session_id"`
	Answer    string       `json:"answer"`
	Grounded  bool         `json:"grounded"`
	Sources   []ChatSource `json:"sources"`
}
