package service

import (
	"context"
	"errors"
	"time"

	"askbase/internal/llm"
	"askbase/internal/models"
	"askbase/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreNotFound = errors.New("not found")

// fakeEmbedder returns a fixed vector for every text.
type fakeEmbedder struct {
	vec      []float32
	err      error
	lastText string
	calls    int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	if f.vec == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return f.vec, nil
}

// fakeSearcher serves a canned ranked result list.
type fakeSearcher struct {
	results []models.ScoredPair
	err     error
	gotTopK int
	gotMin  float64
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, _ uuid.UUID, _ []float32, topK int, minSimilarity float64) ([]models.ScoredPair, error) {
	f.gotTopK = topK
	f.gotMin = minSimilarity
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeGenerator replies with a fixed completion; Stream emits deltas that
// concatenate to the same text.
type fakeGenerator struct {
	reply         string
	err           error
	streamDeltas  []string
	streamErr     error
	completeCalls int
	gotMessages   []llm.Message
}

func (f *fakeGenerator) Complete(_ context.Context, messages []llm.Message, _ int, _ float32) (string, error) {
	f.completeCalls++
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Stream(_ context.Context, messages []llm.Message, _ int, _ float32) (*llm.GenerationStream, error) {
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	deltas := f.streamDeltas
	if deltas == nil {
		deltas = []string{f.reply}
	}
	stream := llm.NewGenerationStream(len(deltas) + 1)
	go func() {
		for _, d := range deltas {
			stream.Push(d)
		}
		stream.Close(f.streamErr)
	}()
	return stream, nil
}

type fakeFactory struct {
	gen llm.Generator
	err error
}

func (f *fakeFactory) GeneratorFor(_ context.Context, _ *models.Workspace) (llm.Generator, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.gen, nil
}

type fakeWorkspaces struct {
	workspaces map[uuid.UUID]*models.Workspace
}

func (f *fakeWorkspaces) GetByID(_ context.Context, id uuid.UUID) (*models.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, errStoreNotFound
	}
	return ws, nil
}

type sessionKey struct {
	workspaceID uuid.UUID
	token       string
}

type fakeSessions struct {
	sessions  map[sessionKey]*models.ConversationSession
	upserts   []*models.ConversationSession
	upsertErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[sessionKey]*models.ConversationSession)}
}

func (f *fakeSessions) GetByToken(_ context.Context, workspaceID uuid.UUID, token string) (*models.ConversationSession, error) {
	s, ok := f.sessions[sessionKey{workspaceID, token}]
	if !ok {
		return nil, errStoreNotFound
	}
	return s, nil
}

func (f *fakeSessions) Upsert(_ context.Context, session *models.ConversationSession) (*models.ConversationSession, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, session)
	f.sessions[sessionKey{session.WorkspaceID, session.ConversationToken}] = session
	return session, nil
}

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) CountActive(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.count, f.err
}

type recordedGap struct {
	workspaceID uuid.UUID
	sessionID   uuid.UUID
	question    string
	aiAnswer    string
	top         *models.ScoredPair
}

type fakeGapRecorder struct {
	records []recordedGap
	err     error
}

func (f *fakeGapRecorder) Record(_ context.Context, workspaceID, sessionID uuid.UUID, question, aiAnswer string, top *models.ScoredPair) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, recordedGap{workspaceID, sessionID, question, aiAnswer, top})
	return nil
}

// fakeGapStore is the in-memory GapStore used by gap workflow tests.
type fakeGapStore struct {
	gaps map[uuid.UUID]*models.KnowledgeGap
}

func newFakeGapStore() *fakeGapStore {
	return &fakeGapStore{gaps: make(map[uuid.UUID]*models.KnowledgeGap)}
}

func (f *fakeGapStore) Insert(_ context.Context, gap *models.KnowledgeGap) error {
	f.gaps[gap.ID] = gap
	return nil
}

func (f *fakeGapStore) GetByID(_ context.Context, id uuid.UUID) (*models.KnowledgeGap, error) {
	gap, ok := f.gaps[id]
	if !ok {
		return nil, errStoreNotFound
	}
	return gap, nil
}

func (f *fakeGapStore) ListOpen(ctx context.Context, workspaceID uuid.UUID) ([]*models.KnowledgeGap, error) {
	return f.ListByStatus(ctx, workspaceID, models.GapStatusOpen)
}

func (f *fakeGapStore) ListByStatus(_ context.Context, workspaceID uuid.UUID, status models.GapStatus) ([]*models.KnowledgeGap, error) {
	out := []*models.KnowledgeGap{}
	for _, gap := range f.gaps {
		if gap.WorkspaceID == workspaceID && gap.Status == status {
			out = append(out, gap)
		}
	}
	return out, nil
}

func (f *fakeGapStore) MarkResolved(_ context.Context, id, resolvedPairID uuid.UUID) error {
	gap, ok := f.gaps[id]
	if !ok || gap.Status != models.GapStatusOpen {
		return errStoreNotFound
	}
	gap.Status = models.GapStatusResolved
	gap.ResolvedPairID = &resolvedPairID
	return nil
}

func (f *fakeGapStore) MarkDismissed(_ context.Context, id uuid.UUID) error {
	gap, ok := f.gaps[id]
	if !ok || gap.Status != models.GapStatusOpen {
		return errStoreNotFound
	}
	gap.Status = models.GapStatusDismissed
	return nil
}

// fakePairStore covers both PairCreator and KnowledgeStore.
type fakePairStore struct {
	pairs     map[uuid.UUID]*models.KnowledgePair
	createErr error
}

func newFakePairStore() *fakePairStore {
	return &fakePairStore{pairs: make(map[uuid.UUID]*models.KnowledgePair)}
}

func (f *fakePairStore) Create(_ context.Context, pair *models.KnowledgePair) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.pairs[pair.ID] = pair
	return nil
}

func (f *fakePairStore) Update(_ context.Context, pair *models.KnowledgePair) error {
	if _, ok := f.pairs[pair.ID]; !ok {
		return errStoreNotFound
	}
	f.pairs[pair.ID] = pair
	return nil
}

func (f *fakePairStore) GetByID(_ context.Context, id uuid.UUID) (*models.KnowledgePair, error) {
	pair, ok := f.pairs[id]
	if !ok {
		return nil, errStoreNotFound
	}
	return pair, nil
}

func (f *fakePairStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	pair, ok := f.pairs[id]
	if !ok {
		return errStoreNotFound
	}
	pair.IsActive = active
	return nil
}

func testWorkspace() *models.Workspace {
	return &models.Workspace{
		ID:                  uuid.New(),
		Name:                "Test Workspace",
		ConfidenceThreshold: 0.78,
		MaxSuggestionChips:  3,
		EscalationEnabled:   true,
		BookingURL:          "https://example.com/book",
		Provider:            models.ProviderOpenAI,
		Model:               "gpt-4o-mini",
		APICredential:       "sk-test",
	}
}

func scoredPair(similarity float64) models.ScoredPair {
	return models.ScoredPair{
		Pair: models.KnowledgePair{
			ID:       uuid.New(),
			Question: "What are your opening hours?",
			Answer:   "We are open 9 to 18 on weekdays.",
			Category: "general",
			IsActive: true,
		},
		Similarity: similarity,
	}
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		TopK:            5,
		MinSimilarity:   0.3,
		HistoryWindow:   20,
		MaxMessageLen:   4000,
		MaxTokens:       1024,
		Temperature:     0.3,
		RateLimitWindow: time.Hour,
		RateLimitMax:    100,
		StreamTimeout:   5 * time.Second,
	}
}

// chatFixture assembles a ChatService over in-memory fakes with one
// configured workspace and one grounded knowledge pair.
type chatFixture struct {
	svc       *ChatService
	workspace *models.Workspace
	sessions  *fakeSessions
	counter   *fakeCounter
	searcher  *fakeSearcher
	generator *fakeGenerator
	gaps      *fakeGapRecorder
	deferred  *DeferredRunner
}

func newChatFixture() *chatFixture {
	ws := testWorkspace()
	sessions := newFakeSessions()
	counter := &fakeCounter{count: 5}
	searcher := &fakeSearcher{results: []models.ScoredPair{scoredPair(0.91)}}
	generator := &fakeGenerator{reply: `{"answer": "We open at 9.", "suggestion_chips": ["Do you take walk-ins?"], "escalation_offered": false}`}
	gaps := &fakeGapRecorder{}
	log := zap.NewNop()
	cfg := testChatConfig()
	deferred := NewDeferredRunner(cfg.StreamTimeout, log)

	rag := NewRAGService(&fakeEmbedder{}, searcher, cfg.MinSimilarity, log)
	limiter := NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax, log)
	notFound := func(err error) bool { return errors.Is(err, errStoreNotFound) }

	svc := NewChatService(
		&fakeWorkspaces{workspaces: map[uuid.UUID]*models.Workspace{ws.ID: ws}},
		sessions,
		counter,
		rag,
		gaps,
		&fakeFactory{gen: generator},
		limiter,
		deferred,
		cfg,
		notFound,
		log,
	)

	return &chatFixture{
		svc:       svc,
		workspace: ws,
		sessions:  sessions,
		counter:   counter,
		searcher:  searcher,
		generator: generator,
		gaps:      gaps,
		deferred:  deferred,
	}
}
