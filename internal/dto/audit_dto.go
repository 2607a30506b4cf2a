package dto

import "time"

type ListAuditRequest struct {
	From   *uint64 `query:"from"`
	To     *uint64 `query:"to"`
	Limit  int     `query:"limit"`
	Offset int     `query:"offset"`
}

type AuditEntryResponse struct {
	SequenceNo  uint64    `json:"sequence_no"`
	Timestamp   time.Time `json:"timestamp"`
	ActorId     string    `json:"actor_id"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	Details     string    `json:"details,omitempty"`
	PayloadHash string    `json:"payload_hash"`
	PriorHash   string    `json:"prior_hash"`
	EntryHash   string    `json:"entry_hash"`
}

type ListAuditResponse struct {
	Entries  []AuditEntryResponse `json:"entries"`
	Total    int64                `json:"total"`
	Verified bool                 `json:"verified"`
}
