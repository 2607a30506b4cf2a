package audit

import (
	"testing"
	"time"

	"casechat-be/internal/entity"
)

func baseEntry() *entity.AuditEntry {
	return &entity.AuditEntry{
		SequenceNo:  3,
		Timestamp:   time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		ActorId:     "user-1",
		Action:      "SEARCH_QUERY",
		Resource:    "query_engine",
		Details:     "what is the termination clause",
		PayloadHash: HashPayload("some answer"),
		PriorHash:   GenesisHash,
	}
}

func TestComputeEntryHashDeterministic(t *testing.T) {
	e := baseEntry()
	first := ComputeEntryHash(e)
	second := ComputeEntryHash(e)
	if first != second {
		t.Fatalf("hash not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestComputeEntryHashTimestampCanonicalized(t *testing.T) {
	e := baseEntry()
	utcHash := ComputeEntryHash(e)

	loc := time.FixedZone("UTC+7", 7*3600)
	e.Timestamp = e.Timestamp.In(loc)
	if got := ComputeEntryHash(e); got != utcHash {
		t.Fatalf("hash changed after timezone round trip: %s vs %s", got, utcHash)
	}
}

func TestComputeEntryHashCoversEveryField(t *testing.T) {
	original := ComputeEntryHash(baseEntry())

	mutations := map[string]func(*entity.AuditEntry){
		"sequence":     func(e *entity.AuditEntry) { e.SequenceNo = 4 },
		"timestamp":    func(e *entity.AuditEntry) { e.Timestamp = e.Timestamp.Add(time.Nanosecond) },
		"actor":        func(e *entity.AuditEntry) { e.ActorId = "user-2" },
		"action":       func(e *entity.AuditEntry) { e.Action = "DOCUMENT_REGISTER" },
		"resource":     func(e *entity.AuditEntry) { e.Resource = "document_registry" },
		"details":      func(e *entity.AuditEntry) { e.Details = "changed" },
		"payload_hash": func(e *entity.AuditEntry) { e.PayloadHash = HashPayload("other answer") },
		"prior_hash":   func(e *entity.AuditEntry) { e.PriorHash = HashPayload("x") },
	}

	for name, mutate := range mutations {
		e := baseEntry()
		mutate(e)
		if ComputeEntryHash(e) == original {
			t.Errorf("mutating %s did not change the hash", name)
		}
	}
}

func TestGenesisHashShape(t *testing.T) {
	if len(GenesisHash) != 64 {
		t.Fatalf("genesis hash must be 64 chars, got %d", len(GenesisHash))
	}
	for _, c := range GenesisHash {
		if c != '0' {
			t.Fatalf("genesis hash must be all zeros")
		}
	}
}
