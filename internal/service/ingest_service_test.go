package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"casechat-be/internal/constant"
	"casechat-be/internal/dto"
	"casechat-be/pkg/audit"
	"casechat-be/pkg/risk"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	uow       *fakeUow
	storage   *memStorage
	llm       *scriptedLLM
	embedder  *stubEmbedder
	documents IDocumentService
	uploads   IUploadService
	ingest    IIngestService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	uow := newFakeUow()
	store := newMemStorage()
	provider := &scriptedLLM{answer: `{"score": "medium", "flags": ["Missing Termination for Convenience"]}`}
	embedder := &stubEmbedder{}

	factory := &fakeUowFactory{uow: uow}
	ledger := audit.NewLedger(uow.auditRepo)
	recorder := NewAuditRecorder(ledger, nil, nopLogger{})
	documents := NewDocumentService(factory, recorder, nil, nopLogger{})
	analyzer := risk.NewAnalyzer(provider, nopLogger{})

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService(pubSub, "INGEST_DOCUMENT")
	uploads := NewUploadService(documents, store, publisher, nil, nopLogger{})
	ingest := NewIngestService(pubSub, "INGEST_DOCUMENT", factory, documents, store, embedder, analyzer, nil, nopLogger{})

	return &pipelineFixture{
		uow:       uow,
		storage:   store,
		llm:       provider,
		embedder:  embedder,
		documents: documents,
		uploads:   uploads,
		ingest:    ingest,
	}
}

func waitForStatus(t *testing.T, f *pipelineFixture, id interface{ String() string }, want string) *dto.DocumentResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		docs, err := f.documents.List(context.Background(), &dto.ListDocumentsRequest{})
		require.NoError(t, err)
		for i := range docs.Documents {
			if docs.Documents[i].Id.String() == id.String() && docs.Documents[i].Status == want {
				return &docs.Documents[i]
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("document %s never reached status %q", id, want)
	return nil
}

func TestUploadIssueURLRegistersPendingDocument(t *testing.T) {
	f := newPipelineFixture(t)

	res, err := f.uploads.IssueUploadURL(context.Background(), "actor-1", &dto.IssueUploadURLRequest{
		FileName:    "msa.pdf",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("docs/%s/msa.pdf", res.DocumentId), res.Key)
	assert.Contains(t, res.UploadURL, res.Key)
	assert.Equal(t, 3600, res.ExpiresIn)

	doc, err := f.documents.Show(context.Background(), res.DocumentId)
	require.NoError(t, err)
	assert.Equal(t, constant.DocumentStatusPending, doc.Status)
	assert.Equal(t, "application/pdf", doc.ContentType)
}

func TestUploadStoreObjectRejectsForeignKey(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.uploads.StoreObject(context.Background(), "actor-1", "not-a-doc-key.bin", []byte("x"))
	assert.Error(t, err)

	err = f.uploads.StoreObject(context.Background(), "actor-1", "docs/not-a-uuid/file.pdf", []byte("x"))
	assert.Error(t, err)
}

func TestIngestPipelineIndexesDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.ingest.Consume(ctx))

	ticket, err := f.uploads.IssueUploadURL(ctx, "actor-1", &dto.IssueUploadURLRequest{FileName: "msa.pdf"})
	require.NoError(t, err)

	body := strings.Repeat("The Vendor shall indemnify the Client without limit. ", 50)
	require.NoError(t, f.uploads.StoreObject(ctx, "actor-1", ticket.Key, []byte(body)))

	doc := waitForStatus(t, f, ticket.DocumentId, constant.DocumentStatusIndexed)
	assert.Equal(t, constant.RiskLevelMedium, doc.RiskLevel)
	assert.Equal(t, []string{"Missing Termination for Convenience"}, doc.RiskFlags)

	chunks := f.uow.embRepo.storedChunks()
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, ticket.DocumentId, chunk.DocumentId)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, fmt.Sprintf("msa.pdf#chunk-%d", i), chunk.SourceLocator)
	}

	entries := f.uow.auditRepo.byAction(constant.AuditActionDocumentIndexed)
	assert.Len(t, entries, 1)
}

func TestIngestEmptyObjectFailsDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.ingest.Consume(ctx))

	ticket, err := f.uploads.IssueUploadURL(ctx, "actor-1", &dto.IssueUploadURLRequest{FileName: "empty.pdf"})
	require.NoError(t, err)
	require.NoError(t, f.uploads.StoreObject(ctx, "actor-1", ticket.Key, []byte{}))

	doc := waitForStatus(t, f, ticket.DocumentId, constant.DocumentStatusFailed)
	assert.Contains(t, doc.FailureReason, "empty")

	entries := f.uow.auditRepo.byAction(constant.AuditActionDocumentFailed)
	assert.Len(t, entries, 1)
}

func TestIngestEmbeddingFailureFailsDocument(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.err = assert.AnError

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.ingest.Consume(ctx))

	ticket, err := f.uploads.IssueUploadURL(ctx, "actor-1", &dto.IssueUploadURLRequest{FileName: "msa.pdf"})
	require.NoError(t, err)
	require.NoError(t, f.uploads.StoreObject(ctx, "actor-1", ticket.Key, []byte("some contract text")))

	doc := waitForStatus(t, f, ticket.DocumentId, constant.DocumentStatusFailed)
	assert.Contains(t, doc.FailureReason, "embed chunk")

	// nothing was indexed
	chunks := f.uow.embRepo.storedChunks()
	assert.Empty(t, chunks)
}
