package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"casechat-be/internal/entity"
	"casechat-be/internal/repository/contract"
	"casechat-be/internal/repository/specification"
)

// ErrChainIntegrityViolation means a stored entry no longer matches its
// recomputed hash or linkage. It is never repaired silently; audit reads
// should be refused until the cause is resolved.
var ErrChainIntegrityViolation = errors.New("audit chain integrity violation")

// Ledger is the append-only, hash-chained audit log. Append is the sole
// globally-serialized section in the system: the chain invariant is global,
// so every writer funnels through the ledger mutex.
type Ledger struct {
	repo contract.AuditEntryRepository

	mu     sync.Mutex
	tail   *entity.AuditEntry
	loaded bool
	now    func() time.Time
}

func NewLedger(repo contract.AuditEntryRepository) *Ledger {
	return &Ledger{
		repo: repo,
		now:  time.Now,
	}
}

// loadTail recovers the chain position from storage on first use.
// Caller must hold the mutex.
func (l *Ledger) loadTail(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	tail, err := l.repo.FindLast(ctx)
	if err != nil {
		return fmt.Errorf("load audit tail: %w", err)
	}
	l.tail = tail
	l.loaded = true
	return nil
}

// Append writes the next chain entry. Linearizable: concurrent callers
// observe a single total order of sequence numbers.
func (l *Ledger) Append(ctx context.Context, actorId, action, resource, details, payloadHash string) (*entity.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.loadTail(ctx); err != nil {
		return nil, err
	}

	entry := &entity.AuditEntry{
		SequenceNo:  0,
		Timestamp:   l.now().UTC(),
		ActorId:     actorId,
		Action:      action,
		Resource:    resource,
		Details:     details,
		PayloadHash: payloadHash,
		PriorHash:   GenesisHash,
	}
	if l.tail != nil {
		entry.SequenceNo = l.tail.SequenceNo + 1
		entry.PriorHash = l.tail.EntryHash
	}
	entry.EntryHash = ComputeEntryHash(entry)

	if err := l.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry %d: %w", entry.SequenceNo, err)
	}

	l.tail = entry
	return entry, nil
}

// VerifyChain recomputes every entry hash in [from, to) and confirms the
// linkage. Any mismatch is reported as ErrChainIntegrityViolation.
func (l *Ledger) VerifyChain(ctx context.Context, from, to int64) error {
	entries, err := l.repo.FindAll(ctx,
		specification.BySequenceRange{From: from, To: to},
		specification.OrderBy{Field: "sequence_no"},
	)
	if err != nil {
		return fmt.Errorf("read audit range [%d,%d): %w", from, to, err)
	}

	var priorHash string
	for i, entry := range entries {
		if recomputed := ComputeEntryHash(entry); recomputed != entry.EntryHash {
			return fmt.Errorf("entry %d hash mismatch: %w", entry.SequenceNo, ErrChainIntegrityViolation)
		}

		switch {
		case entry.SequenceNo == 0:
			if entry.PriorHash != GenesisHash {
				return fmt.Errorf("entry 0 prior hash is not genesis: %w", ErrChainIntegrityViolation)
			}
		case i > 0:
			if entries[i-1].SequenceNo != entry.SequenceNo-1 {
				return fmt.Errorf("sequence gap before entry %d: %w", entry.SequenceNo, ErrChainIntegrityViolation)
			}
			if entry.PriorHash != priorHash {
				return fmt.Errorf("entry %d broken linkage: %w", entry.SequenceNo, ErrChainIntegrityViolation)
			}
		}
		priorHash = entry.EntryHash
	}
	return nil
}

// List returns entries ordered by sequence number ascending (oldest first).
func (l *Ledger) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	return l.repo.FindAll(ctx,
		specification.OrderBy{Field: "sequence_no"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
}

// ListRange returns entries with sequence number in [from, to), ascending.
func (l *Ledger) ListRange(ctx context.Context, from, to int64, limit, offset int) ([]*entity.AuditEntry, error) {
	return l.repo.FindAll(ctx,
		specification.BySequenceRange{From: from, To: to},
		specification.OrderBy{Field: "sequence_no"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
}

// Size returns the number of entries in the ledger.
func (l *Ledger) Size(ctx context.Context) (int64, error) {
	return l.repo.Count(ctx)
}
