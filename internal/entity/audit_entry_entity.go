package entity

import "time"

// AuditEntry is one link in the append-only, hash-chained audit ledger.
// EntryHash covers every other field plus PriorHash; for n > 0 the entry's
// PriorHash must equal entry n-1's EntryHash.
type AuditEntry struct {
	SequenceNo  int64
	Timestamp   time.Time
	ActorId     string
	Action      string
	Resource    string
	Details     string
	PayloadHash string
	PriorHash   string
	EntryHash   string
}
