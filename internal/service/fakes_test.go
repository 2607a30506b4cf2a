package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"casechat-be/internal/entity"
	"casechat-be/internal/model"
	"casechat-be/internal/repository/contract"
	"casechat-be/internal/repository/specification"
	"casechat-be/internal/repository/unitofwork"
	"casechat-be/pkg/embedding"
	"casechat-be/pkg/llm"
	"casechat-be/pkg/storage"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// memDocumentRepo is an in-memory DocumentRepository. Specifications are
// interpreted directly instead of being applied to a gorm query.
type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*entity.Document
	err  error
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: map[uuid.UUID]*entity.Document{}}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.Id] = &copied
	return nil
}

func (r *memDocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.Id] = &copied
	return nil
}

func (r *memDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if doc, found := r.docs[byID.ID]; found {
				copied := *doc
				return &copied, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *memDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*entity.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		if matchesDocSpecs(doc, specs) {
			copied := *doc
			matched = append(matched, &copied)
		}
	}

	limit, offset := -1, 0
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			desc := s.Desc
			sort.Slice(matched, func(i, j int) bool {
				if desc {
					return matched[i].UploadedAt.After(matched[j].UploadedAt)
				}
				return matched[i].UploadedAt.Before(matched[j].UploadedAt)
			})
		case specification.Pagination:
			limit, offset = s.Limit, s.Offset
		}
	}

	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memDocumentRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, doc := range r.docs {
		if matchesDocSpecs(doc, specs) {
			count++
		}
	}
	return count, nil
}

func matchesDocSpecs(doc *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		if byStatus, ok := spec.(specification.ByStatus); ok && doc.Status != byStatus.Status {
			return false
		}
	}
	return true
}

// memAuditRepo backs the ledger in tests. Entries stay ordered by sequence
// number; mutating them directly after append simulates tampering.
type memAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (r *memAuditRepo) Create(_ context.Context, entry *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *memAuditRepo) FindLast(_ context.Context) (*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil, nil
	}
	copied := *r.entries[len(r.entries)-1]
	return &copied, nil
}

func (r *memAuditRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*entity.AuditEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		keep := true
		for _, spec := range specs {
			if rng, ok := spec.(specification.BySequenceRange); ok {
				if entry.SequenceNo < rng.From || entry.SequenceNo >= rng.To {
					keep = false
				}
			}
		}
		if keep {
			copied := *entry
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SequenceNo < matched[j].SequenceNo
	})

	for _, spec := range specs {
		if page, ok := spec.(specification.Pagination); ok {
			offset := page.Offset
			if offset > len(matched) {
				offset = len(matched)
			}
			matched = matched[offset:]
			if page.Limit >= 0 && page.Limit < len(matched) {
				matched = matched[:page.Limit]
			}
		}
	}
	return matched, nil
}

func (r *memAuditRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *memAuditRepo) byAction(action string) []*entity.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out
}

type memChatMessageRepo struct {
	mu        sync.Mutex
	messages  []*entity.ChatMessage
	citations []*entity.ChatCitation
}

func (r *memChatMessageRepo) Create(_ context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memChatMessageRepo) CreateCitations(_ context.Context, citations []*entity.ChatCitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range citations {
		copied := *c
		r.citations = append(r.citations, &copied)
	}
	return nil
}

func (r *memChatMessageRepo) FindCitationsByMessageIds(_ context.Context, messageIds []uuid.UUID) ([]*entity.ChatCitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := map[uuid.UUID]bool{}
	for _, id := range messageIds {
		ids[id] = true
	}
	var out []*entity.ChatCitation
	for _, c := range r.citations {
		if ids[c.ChatMessageId] {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memChatMessageRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out, nil
}

func (r *memChatMessageRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

type memEmbeddingRepo struct {
	mu      sync.Mutex
	hits    []*contract.ScoredChunk
	stored  []*model.DocumentEmbedding
	deleted []uuid.UUID
	err     error
}

func (r *memEmbeddingRepo) CreateBatch(_ context.Context, embeddings []*model.DocumentEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range embeddings {
		copied := *e
		r.stored = append(r.stored, &copied)
	}
	return nil
}

func (r *memEmbeddingRepo) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, documentId)
	kept := r.stored[:0]
	for _, e := range r.stored {
		if e.DocumentId != documentId {
			kept = append(kept, e)
		}
	}
	r.stored = kept
	return nil
}

func (r *memEmbeddingRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.stored)), nil
}

func (r *memEmbeddingRepo) storedChunks() []*model.DocumentEmbedding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.DocumentEmbedding, len(r.stored))
	copy(out, r.stored)
	return out
}

func (r *memEmbeddingRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int, _ *uuid.UUID) ([]*contract.ScoredChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.hits) {
		return r.hits[:limit], nil
	}
	return r.hits, nil
}

// fakeUow hands the in-memory repositories to services; the transactional
// surface is a no-op beyond recording that Commit happened.
type fakeUow struct {
	docRepo   *memDocumentRepo
	embRepo   *memEmbeddingRepo
	msgRepo   *memChatMessageRepo
	auditRepo *memAuditRepo

	mu        sync.Mutex
	committed int
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		docRepo:   newMemDocumentRepo(),
		embRepo:   &memEmbeddingRepo{},
		msgRepo:   &memChatMessageRepo{},
		auditRepo: &memAuditRepo{},
	}
}

func (f *fakeUow) Begin(_ context.Context) error { return nil }

func (f *fakeUow) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed++
	return nil
}

func (f *fakeUow) Rollback() error { return nil }

func (f *fakeUow) DocumentRepository() contract.DocumentRepository { return f.docRepo }
func (f *fakeUow) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return f.embRepo
}
func (f *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return f.msgRepo }
func (f *fakeUow) AuditEntryRepository() contract.AuditEntryRepository   { return f.auditRepo }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

// memStorage is an in-memory storage.Provider.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) IssueUploadURL(_ context.Context, key string) (*storage.UploadTicket, error) {
	return &storage.UploadTicket{
		UploadURL: "http://localhost/api/upload/v1/object/" + key,
		Key:       key,
		ExpiresIn: 3600,
	}, nil
}

func (s *memStorage) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStorage) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, found := s.objects[key]
	if !found {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return append([]byte(nil), data...), nil
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(_ string, _ string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

// scriptedLLM answers from a fixed script; when block is set it waits for
// context cancellation instead, which exercises the generation deadline.
type scriptedLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	block   bool
	history []llm.Message
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.mu.Lock()
	s.history = history
	block, answer, err := s.block, s.answer, s.err
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (s *scriptedLLM) lastHistory() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}
