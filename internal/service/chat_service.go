package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"askbase/internal/dto"
	"askbase/internal/llm"
	"askbase/internal/models"
	"askbase/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Advisory answers for the two soft admission failures. Visitors see these
// as normal answers; nothing is retrieved, generated or persisted.
const (
	RateLimitAdvisory     = "You're sending messages too quickly. Please wait a moment and try again."
	NotConfiguredAdvisory = "This assistant hasn't been set up with any knowledge yet. Please check back a little later."
)

var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrMessageTooLong    = errors.New("message exceeds the maximum length")
	ErrMissingToken      = errors.New("conversation token is required")
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// SessionStore persists conversation transcripts.
type SessionStore interface {
	GetByToken(ctx context.Context, workspaceID uuid.UUID, token string) (*models.ConversationSession, error)
	Upsert(ctx context.Context, session *models.ConversationSession) (*models.ConversationSession, error)
}

// KnowledgeCounter reports the size of a workspace's active knowledge base.
type KnowledgeCounter interface {
	CountActive(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

// GeneratorFactory yields the generation client for a workspace's configured
// provider, model and credential.
type GeneratorFactory interface {
	GeneratorFor(ctx context.Context, ws *models.Workspace) (llm.Generator, error)
}

// GapRecorder captures low-confidence questions for human review.
type GapRecorder interface {
	Record(ctx context.Context, workspaceID, sessionID uuid.UUID, question, aiAnswer string, top *models.ScoredPair) error
}

type ChatService struct {
	workspaces WorkspaceReader
	sessions   SessionStore
	knowledge  KnowledgeCounter
	rag        *RAGService
	gaps       GapRecorder
	generators GeneratorFactory
	limiter    *RateLimiter
	deferred   *DeferredRunner
	cfg        config.ChatConfig
	logger     *zap.Logger
	notFound   func(error) bool
	now        func() time.Time
}

func NewChatService(
	workspaces WorkspaceReader,
	sessions SessionStore,
	knowledge KnowledgeCounter,
	rag *RAGService,
	gaps GapRecorder,
	generators GeneratorFactory,
	limiter *RateLimiter,
	deferred *DeferredRunner,
	cfg config.ChatConfig,
	notFound func(error) bool,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		workspaces: workspaces,
		sessions:   sessions,
		knowledge:  knowledge,
		rag:        rag,
		gaps:       gaps,
		generators: generators,
		limiter:    limiter,
		deferred:   deferred,
		cfg:        cfg,
		logger:     logger,
		notFound:   notFound,
		now:        time.Now,
	}
}

// preflight carries everything the pipeline needs once admission checks have
// passed. When shortCircuit is non-nil the request is already answered
// (advisory or idempotent replay) and no generation may run.
type preflight struct {
	workspace    *models.Workspace
	generator    llm.Generator
	session      *models.ConversationSession
	token        string
	message      string
	messageID    string
	shortCircuit *dto.ChatResponse
}

// Send is the synchronous flow: retrieval, confidence decision, generation,
// parsing, optional gap record and session write, in that order.
func (s *ChatService) Send(ctx context.Context, workspaceID uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	pf, err := s.prepare(ctx, workspaceID, req)
	if err != nil {
		return nil, err
	}
	if pf.shortCircuit != nil {
		return pf.shortCircuit, nil
	}

	pipe, err := s.runPipeline(ctx, pf)
	if err != nil {
		return nil, err
	}

	raw, err := pf.generator.Complete(ctx, pipe.messages, s.cfg.MaxTokens, float32(s.cfg.Temperature))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	reply := ParseAssistantReply(raw, pf.workspace.ChipLimit())
	resp := s.finish(ctx, pf, pipe, reply)
	return resp, nil
}

// prepare walks the admission states shared by both flows: message bounds,
// rate limiting, empty knowledge base, credential presence and the
// idempotency check.
func (s *ChatService) prepare(ctx context.Context, workspaceID uuid.UUID, req *dto.ChatRequest) (*preflight, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > s.cfg.MaxMessageLen {
		return nil, ErrMessageTooLong
	}
	if strings.TrimSpace(req.ConversationToken) == "" {
		return nil, ErrMissingToken
	}

	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if s.notFound != nil && s.notFound(err) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	if !s.limiter.Admit(req.ConversationToken) {
		return &preflight{shortCircuit: advisoryResponse(RateLimitAdvisory)}, nil
	}

	count, err := s.knowledge.CountActive(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count knowledge base: %w", err)
	}
	if count == 0 {
		return &preflight{shortCircuit: advisoryResponse(NotConfiguredAdvisory)}, nil
	}

	generator, err := s.generators.GeneratorFor(ctx, ws)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByToken(ctx, workspaceID, req.ConversationToken)
	if err != nil {
		if s.notFound == nil || !s.notFound(err) {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		session = nil
	}

	messageID := strings.TrimSpace(req.MessageID)
	if session != nil && messageID != "" {
		if cached := session.CachedAnswer(messageID); cached != nil {
			s.logger.Info("Idempotent replay, returning cached answer",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("message_id", messageID),
			)
			return &preflight{shortCircuit: cachedResponse(ws, session, cached)}, nil
		}
	}
	if messageID == "" {
		messageID = uuid.NewString()
	}

	return &preflight{
		workspace: ws,
		generator: generator,
		session:   session,
		token:     req.ConversationToken,
		message:   message,
		messageID: messageID,
	}, nil
}

// pipelineState is the retrieval/decision context carried between GENERATE
// and the post-generation states.
type pipelineState struct {
	candidates []models.ScoredPair
	topScore   float64
	grounded   bool
	messages   []llm.Message
}

func (s *ChatService) runPipeline(ctx context.Context, pf *preflight) (*pipelineState, error) {
	candidates, err := s.rag.Retrieve(ctx, pf.workspace.ID, pf.message, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	top := TopSimilarity(candidates)
	grounded := IsGrounded(top, pf.workspace.Threshold())

	var history []models.ConversationTurn
	if pf.session != nil {
		history = pf.session.Turns
	}

	return &pipelineState{
		candidates: candidates,
		topScore:   top,
		grounded:   grounded,
		messages:   buildMessages(pf.workspace, candidates, history, pf.message, s.cfg.HistoryWindow),
	}, nil
}

// finish runs the post-generation states: gap recording, session write and
// response assembly. Persistence failures are logged, never surfaced, since
// the answer has already been determined.
func (s *ChatService) finish(ctx context.Context, pf *preflight, pipe *pipelineState, reply AssistantReply) *dto.ChatResponse {
	session := s.appendTurns(pf, pipe, reply)

	if !pipe.grounded {
		var top *models.ScoredPair
		if len(pipe.candidates) > 0 {
			top = &pipe.candidates[0]
		}
		if err := s.gaps.Record(ctx, pf.workspace.ID, session.ID, pf.message, reply.Answer, top); err != nil {
			s.logger.Error("Failed to record knowledge gap", zap.Error(err))
		}
	}

	stored, err := s.sessions.Upsert(ctx, session)
	if err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
		stored = session
	}

	return s.buildResponse(pf.workspace, stored, pipe, reply)
}

func (s *ChatService) appendTurns(pf *preflight, pipe *pipelineState, reply AssistantReply) *models.ConversationSession {
	now := s.now().UTC()

	session := pf.session
	if session == nil {
		session = &models.ConversationSession{
			ID:                uuid.New(),
			WorkspaceID:       pf.workspace.ID,
			ConversationToken: pf.conversationToken(),
			CreatedAt:         now,
		}
	}

	matched := make([]uuid.UUID, 0, len(pipe.candidates))
	for _, c := range pipe.candidates {
		matched = append(matched, c.Pair.ID)
	}

	confidence := pipe.topScore
	session.Turns = append(session.Turns,
		models.ConversationTurn{
			MessageID: pf.messageID,
			Role:      models.RoleUser,
			Content:   pf.message,
			Timestamp: now,
		},
		models.ConversationTurn{
			MessageID:         uuid.NewString(),
			Role:              models.RoleAssistant,
			Content:           reply.Answer,
			Timestamp:         now,
			Confidence:        &confidence,
			MatchedPairIDs:    matched,
			SuggestionChips:   reply.SuggestionChips,
			GapDetected:       !pipe.grounded,
			EscalationOffered: reply.EscalationOffered,
		},
	)

	// Escalation is monotonic within a session.
	if reply.EscalationOffered && !session.Escalated {
		session.Escalated = true
		at := now
		session.EscalatedAt = &at
	}
	session.UpdatedAt = now
	return session
}

func (s *ChatService) buildResponse(ws *models.Workspace, session *models.ConversationSession, pipe *pipelineState, reply AssistantReply) *dto.ChatResponse {
	matched := make([]string, 0, len(pipe.candidates))
	for _, c := range pipe.candidates {
		matched = append(matched, c.Pair.ID.String())
	}

	resp := &dto.ChatResponse{
		Answer:            reply.Answer,
		SuggestionChips:   reply.SuggestionChips,
		Confidence:        pipe.topScore,
		GapDetected:       !pipe.grounded,
		EscalationOffered: reply.EscalationOffered,
		MatchedPairs:      matched,
		SessionID:         session.ID.String(),
		TurnCount:         len(session.Turns),
	}
	if reply.EscalationOffered && ws.EscalationEnabled {
		resp.BookingURL = ws.BookingURL
	}
	return resp
}

func advisoryResponse(answer string) *dto.ChatResponse {
	return &dto.ChatResponse{
		Answer:          answer,
		SuggestionChips: []string{},
		MatchedPairs:    []string{},
	}
}

func cachedResponse(ws *models.Workspace, session *models.ConversationSession, turn *models.ConversationTurn) *dto.ChatResponse {
	confidence := 0.0
	if turn.Confidence != nil {
		confidence = *turn.Confidence
	}
	chips := turn.SuggestionChips
	if chips == nil {
		chips = []string{}
	}
	matched := make([]string, 0, len(turn.MatchedPairIDs))
	for _, id := range turn.MatchedPairIDs {
		matched = append(matched, id.String())
	}

	resp := &dto.ChatResponse{
		Answer:            turn.Content,
		SuggestionChips:   chips,
		Confidence:        confidence,
		GapDetected:       turn.GapDetected,
		EscalationOffered: turn.EscalationOffered,
		MatchedPairs:      matched,
		SessionID:         session.ID.String(),
		TurnCount:         len(session.Turns),
	}
	if turn.EscalationOffered && ws.EscalationEnabled {
		resp.BookingURL = ws.BookingURL
	}
	return resp
}

func (pf *preflight) conversationToken() string {
	if pf.session != nil {
		return pf.session.ConversationToken
	}
	return pf.token
}
