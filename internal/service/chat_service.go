package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casechat-be/internal/constant"
	"casechat-be/internal/dto"
	"casechat-be/internal/entity"
	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/repository/unitofwork"
	"casechat-be/pkg/audit"
	"casechat-be/pkg/llm"
	"casechat-be/pkg/rag/citation"
	"casechat-be/pkg/rag/history"
	"casechat-be/pkg/rag/response"
	"casechat-be/pkg/rag/search"
	"casechat-be/pkg/rag/session"
	"casechat-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	Chat(ctx context.Context, actorId string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

// ChatConfig bounds the per-request pipeline.
type ChatConfig struct {
	TopK                 int
	MaxHistoryTurns      int
	GenerationTimeout    time.Duration
	RetrievalRetryDelay  time.Duration
	MaxConcurrentSearch  int
	MaxConcurrentGenerat int
}

func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		TopK:                 5,
		MaxHistoryTurns:      5,
		GenerationTimeout:    60 * time.Second,
		RetrievalRetryDelay:  200 * time.Millisecond,
		MaxConcurrentSearch:  8,
		MaxConcurrentGenerat: 4,
	}
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	sessions      *session.Manager
	searcher      *search.Orchestrator
	historyLoader *history.Loader
	generator     *response.Generator
	correlator    *citation.Correlator
	auditRecorder *AuditRecorder
	config        ChatConfig
	logger        logger.ILogger

	searchSem chan struct{}
	genSem    chan struct{}
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *session.Manager,
	searcher *search.Orchestrator,
	generator *response.Generator,
	auditRec *AuditRecorder,
	config ChatConfig,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:    uowFactory,
		sessions:      sessions,
		searcher:      searcher,
		historyLoader: history.NewLoader(sessions, config.MaxHistoryTurns),
		generator:     generator,
		correlator:    citation.NewCorrelator(),
		auditRecorder: auditRec,
		config:        config,
		logger:        log,
		searchSem:     make(chan struct{}, config.MaxConcurrentSearch),
		genSem:        make(chan struct{}, config.MaxConcurrentGenerat),
	}
}

// Chat runs one full question-to-answer turn: resolve session, retrieve,
// generate, correlate citations, record the turn, audit. Retrieval and
// generation run outside any session lock, so concurrent turns on the same
// session only serialize at the final append.
func (s *chatService) Chat(ctx context.Context, actorId string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sess, created := s.sessions.GetOrCreate(req.SessionId, actorId)
	if created {
		s.logger.Info("chat", "Session created", map[string]interface{}{
			"session_id": sess.Id,
			"actor_id":   actorId,
		})
	}

	scope := s.resolveScope(sess, req.DocId)

	// History is snapshotted before this turn's messages exist, so the
	// model never sees a half-appended exchange.
	llmHistory, err := s.historyLoader.LoadConversationHistory(sess.Id)
	if err != nil {
		return nil, err
	}

	passages, grounded, err := s.retrieve(ctx, req.Query, scope)
	if err != nil {
		return nil, err
	}

	answer, timedOut := s.generate(ctx, req.Query, passages, llmHistory, grounded)

	var citations []store.Citation
	if grounded && !timedOut {
		citations = s.correlator.Correlate(passages)
	}

	now := time.Now()
	userMsg := store.Message{Role: store.RoleUser, Content: req.Query, CreatedAt: now}
	assistantMsg := store.Message{Role: store.RoleAssistant, Content: answer, Citations: citations, CreatedAt: now}

	if err := s.sessions.AppendTurn(sess.Id, userMsg, assistantMsg); err != nil {
		// Session evicted mid-turn. The answer is still valid; the client
		// gets it along with a fresh session on their next request.
		s.logger.Warn("chat", "Session vanished before append", map[string]interface{}{
			"session_id": sess.Id,
		})
	}

	s.persistTurn(ctx, sess.Id, actorId, userMsg, assistantMsg)

	details := truncateQuery(req.Query)
	if scope != nil {
		details = fmt.Sprintf("%s [doc:%s]", details, scope)
	}
	s.auditRecorder.Record(ctx, actorId,
		constant.AuditActionSearchQuery,
		constant.AuditResourceQueryEngine,
		details,
		audit.HashPayload(answer))

	return &dto.ChatResponse{
		SessionId: sess.Id,
		Answer:    answer,
		Grounded:  grounded && !timedOut,
		Sources:   toChatSources(citations),
	}, nil
}

// resolveScope applies an explicit doc_id to the session, otherwise keeps
// whatever scope the session already carries.
func (s *chatService) resolveScope(sess *store.Session, docId *uuid.UUID) *uuid.UUID {
	if docId != nil {
		if err := s.sessions.SetScope(sess.Id, docId); err == nil {
			return docId
		}
		return docId
	}
	sess.Lock()
	defer sess.Unlock()
	return sess.Scope
}

// retrieve runs vector search with one bounded retry. A second failure
// degrades the turn to ungrounded instead of failing it; ErrScopeNotReady is
// surfaced because the client must be told the document is still processing.
func (s *chatService) retrieve(ctx context.Context, query string, scope *uuid.UUID) ([]store.Passage, bool, error) {
	s.searchSem <- struct{}{}
	defer func() { <-s.searchSem }()

	searchCfg := search.Config{TopK: s.config.TopK}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	passages, err := s.searcher.Search(ctx, uow, query, scope, searchCfg)
	if err == nil {
		return passages, true, nil
	}
	if errors.Is(err, search.ErrScopeNotReady) {
		return nil, false, err
	}
	if !errors.Is(err, search.ErrRetrievalUnavailable) {
		return nil, false, err
	}

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-time.After(s.config.RetrievalRetryDelay):
	}

	uow = s.uowFactory.NewUnitOfWork(ctx)
	passages, err = s.searcher.Search(ctx, uow, query, scope, searchCfg)
	if err == nil {
		return passages, true, nil
	}
	if errors.Is(err, search.ErrRetrievalUnavailable) {
		s.logger.Warn("chat", "Retrieval unavailable, degrading to ungrounded answer", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false, nil
	}
	return nil, false, err
}

// generate produces the answer under the generation deadline. The second
// return reports a timeout, which yields the canned reply instead of an error.
func (s *chatService) generate(ctx context.Context, query string, passages []store.Passage, llmHistory []llm.Message, grounded bool) (string, bool) {
	s.genSem <- struct{}{}
	defer func() { <-s.genSem }()

	genCtx, cancel := context.WithTimeout(ctx, s.config.GenerationTimeout)
	defer cancel()

	var answer string
	var err error
	if grounded {
		answer, err = s.generator.Generate(genCtx, query, passages, llmHistory)
	} else {
		answer, err = s.generator.GenerateUngrounded(genCtx, query, llmHistory)
		if err == nil {
			answer = constant.UngroundedAnswerNotice + answer
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("chat", "Generation timed out", map[string]interface{}{})
			return constant.GenerationTimeoutReply, true
		}
		s.logger.Error("chat", "Generation failed", map[string]interface{}{"error": err.Error()})
		return constant.GenerationTimeoutReply, true
	}
	return answer, false
}

// persistTurn writes the exchange to the durable transcript. The in-memory
// session already holds the turn, so a storage hiccup degrades durability
// but never the conversation.
func (s *chatService) persistTurn(ctx context.Context, sessionId, actorId string, userMsg, assistantMsg store.Message) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.logger.Warn("chat", "Transcript persistence skipped", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	userEntity := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		ActorId:   actorId,
		Role:      userMsg.Role,
		Content:   userMsg.Content,
		CreatedAt: userMsg.CreatedAt,
	}
	assistantEntity := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		ActorId:   actorId,
		Role:      assistantMsg.Role,
		Content:   assistantMsg.Content,
		CreatedAt: assistantMsg.CreatedAt,
	}

	if err := uow.ChatMessageRepository().Create(ctx, userEntity); err != nil {
		s.logger.Warn("chat", "Failed to persist user message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantEntity); err != nil {
		s.logger.Warn("chat", "Failed to persist assistant message", map[string]interface{}{"error": err.Error()})
		return
	}

	if len(assistantMsg.Citations) > 0 {
		citations := make([]*entity.ChatCitation, 0, len(assistantMsg.Citations))
		for _, c := range assistantMsg.Citations {
			citations = append(citations, &entity.ChatCitation{
				Id:            uuid.New(),
				ChatMessageId: assistantEntity.Id,
				DocumentId:    c.Passage.DocumentId,
				Ordinal:       c.Ordinal,
				Snippet:       c.Passage.Text,
				Score:         c.Passage.Score,
				SourceLocator: c.Passage.SourceLocator,
				CreatedAt:     assistantMsg.CreatedAt,
			})
		}
		if err := uow.ChatMessageRepository().CreateCitations(ctx, citations); err != nil {
			s.logger.Warn("chat", "Failed to persist citations", map[string]interface{}{"error": err.Error()})
			return
		}
	}

	if err := uow.Commit(); err != nil {
		s.logger.Warn("chat", "Failed to commit transcript", map[string]interface{}{"error": err.Error()})
	}
}

func truncateQuery(query string) string {
	runes := []rune(query)
	if len(runes) > constant.AuditQueryMaxLen {
		return string(runes[:constant.AuditQueryMaxLen])
	}
	return query
}

func toChatSources(citations []store.Citation) []dto.ChatSource {
	sources := make([]dto.ChatSource, 0, len(citations))
	for _, c := range citations {
		sources = append(sources, dto.ChatSource{
			Ordinal: c.Ordinal,
			Metadata: dto.SourceMetadata{
				Source: c.Passage.SourceLocator,
				Text:   c.Passage.Text,
			},
			Score: c.Passage.Score,
		})
	}
	return sources
}
