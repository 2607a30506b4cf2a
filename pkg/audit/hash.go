package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"casechat-be/internal/entity"
)

// GenesisHash is the fixed prior hash of the first ledger entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// canonicalEntry fixes the field order for hashing. All fields are scalar
// (no maps) so json.Marshal output is deterministic.
type canonicalEntry struct {
	SequenceNo  int64  `json:"sequence_no"`
	Timestamp   string `json:"timestamp"`
	ActorId     string `json:"actor_id"`
	Action      string `json:"action"`
	Resource    string `json:"resource"`
	Details     string `json:"details"`
	PayloadHash string `json:"payload_hash"`
	PriorHash   string `json:"prior_hash"`
}

// ComputeEntryHash derives the entry hash from every field except EntryHash
// itself. Timestamps are canonicalized to UTC RFC3339Nano so recomputation
// survives a round trip through the database.
func ComputeEntryHash(e *entity.AuditEntry) string {
	canonical := canonicalEntry{
		SequenceNo:  e.SequenceNo,
		Timestamp:   e.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorId:     e.ActorId,
		Action:      e.Action,
		Resource:    e.Resource,
		Details:     e.Details,
		PayloadHash: e.PayloadHash,
		PriorHash:   e.PriorHash,
	}
	// Marshal of a flat struct cannot fail
	raw, _ := json.Marshal(canonical)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// HashPayload hashes arbitrary content (e.g. an answer body) so the ledger
// stays tamper-evident without storing the content itself.
func HashPayload(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
