package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"casechat-be/internal/entity"
	"casechat-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuditRepo keeps entries in memory, ordered by sequence number. It
// interprets the specification values the ledger actually uses instead of
// building SQL.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
	failing bool
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return assert.AnError
	}
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *fakeAuditRepo) FindLast(_ context.Context) (*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil, nil
	}
	clone := *r.entries[len(r.entries)-1]
	return &clone, nil
}

func (r *fakeAuditRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, to := int64(0), int64(len(r.entries))
	limit, offset := -1, 0
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySequenceRange:
			from, to = s.From, s.To
		case specification.Pagination:
			limit, offset = s.Limit, s.Offset
		}
	}

	var out []*entity.AuditEntry
	for _, e := range r.entries {
		if e.SequenceNo < from || e.SequenceNo >= to {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAuditRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func TestLedgerAppendChainsEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	first, err := ledger.Append(ctx, "user-1", "SEARCH_QUERY", "query_engine", "q1", HashPayload("a1"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.SequenceNo)
	assert.Equal(t, GenesisHash, first.PriorHash)
	assert.Equal(t, ComputeEntryHash(first), first.EntryHash)

	second, err := ledger.Append(ctx, "user-2", "SEARCH_QUERY", "query_engine", "q2", HashPayload("a2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.SequenceNo)
	assert.Equal(t, first.EntryHash, second.PriorHash)
}

func TestLedgerRecoversTailFromStorage(t *testing.T) {
	repo := &fakeAuditRepo{}
	ctx := context.Background()

	seed := NewLedger(repo)
	_, err := seed.Append(ctx, "user-1", "DOCUMENT_REGISTER", "document_registry", "contract.pdf", "")
	require.NoError(t, err)
	tail, err := seed.Append(ctx, "user-1", "DOCUMENT_INDEXED", "document_registry", "contract.pdf", "")
	require.NoError(t, err)

	// A fresh ledger over the same storage must continue the chain, not
	// restart it.
	restarted := NewLedger(repo)
	next, err := restarted.Append(ctx, "user-2", "SEARCH_QUERY", "query_engine", "q", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.SequenceNo)
	assert.Equal(t, tail.EntryHash, next.PriorHash)
}

func TestLedgerConcurrentAppendsTotalOrder(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, writers)

	for i, e := range entries {
		assert.Equal(t, int64(i), e.SequenceNo)
		if i == 0 {
			assert.Equal(t, GenesisHash, e.PriorHash)
		} else {
			assert.Equal(t, entries[i-1].EntryHash, e.PriorHash)
		}
	}

	require.NoError(t, ledger.VerifyChain(ctx, 0, int64(writers)))
}

func TestLedgerVerifyChainDetectsTamper(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
		require.NoError(t, err)
	}
	require.NoError(t, ledger.VerifyChain(ctx, 0, 5))

	// Rewrite a detail after the fact.
	repo.mu.Lock()
	repo.entries[2].Details = "rewritten"
	repo.mu.Unlock()

	err := ledger.VerifyChain(ctx, 0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrityViolation)
}

func TestLedgerVerifyChainDetectsBrokenLinkage(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
		require.NoError(t, err)
	}

	// Re-hash entry 1 so its own hash is valid but the link to entry 0 is not.
	repo.mu.Lock()
	repo.entries[1].PriorHash = HashPayload("severed")
	repo.entries[1].EntryHash = ComputeEntryHash(repo.entries[1])
	repo.mu.Unlock()

	err := ledger.VerifyChain(ctx, 0, 3)
	assert.ErrorIs(t, err, ErrChainIntegrityViolation)
}

func TestLedgerVerifyChainDetectsSequenceGap(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
		require.NoError(t, err)
	}

	repo.mu.Lock()
	repo.entries = append(repo.entries[:2], repo.entries[3:]...)
	repo.mu.Unlock()

	err := ledger.VerifyChain(ctx, 0, 4)
	assert.ErrorIs(t, err, ErrChainIntegrityViolation)
}

func TestLedgerAppendFailureDoesNotAdvanceTail(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	_, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
	require.NoError(t, err)

	repo.mu.Lock()
	repo.failing = true
	repo.mu.Unlock()
	_, err = ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
	require.Error(t, err)

	repo.mu.Lock()
	repo.failing = false
	repo.mu.Unlock()
	entry, err := ledger.Append(ctx, "user", "SEARCH_QUERY", "query_engine", "q", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.SequenceNo)

	require.NoError(t, ledger.VerifyChain(ctx, 0, 2))
}

func TestLedgerTimestampsAreUTC(t *testing.T) {
	repo := &fakeAuditRepo{}
	ledger := NewLedger(repo)
	ledger.now = func() time.Time {
		return time.Date(2026, 2, 1, 12, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	}

	entry, err := ledger.Append(context.Background(), "user", "SEARCH_QUERY", "query_engine", "q", "")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
}
