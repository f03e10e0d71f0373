package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"askbase/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

type countingAutoResolver struct {
	calls atomic.Int32
}

func (c *countingAutoResolver) AutoResolve(_ context.Context, _ uuid.UUID) (*AutoResolveReport, error) {
	c.calls.Add(1)
	return &AutoResolveReport{}, nil
}

func newKnowledgeFixture() (*KnowledgeService, *fakePairStore, *fakeEmbedder, *countingAutoResolver, *DeferredRunner) {
	pairs := newFakePairStore()
	embedder := &fakeEmbedder{}
	resolver := &countingAutoResolver{}
	deferred := NewDeferredRunner(5*time.Second, zap.NewNop())
	svc := NewKnowledgeService(pairs, embedder, resolver, deferred, zap.NewNop())
	return svc, pairs, embedder, resolver, deferred
}

func TestKnowledgeService_Create(t *testing.T) {
	svc, pairs, embedder, _, _ := newKnowledgeFixture()

	pair, err := svc.Create(context.Background(), uuid.New(), dto.KnowledgeItem{
		Question: "  What are your opening hours?  ",
		Answer:   "9 to 18 on weekdays.",
		Category: "general",
	})
	require.NoError(t, err)

	assert.Equal(t, "What are your opening hours?", pair.Question)
	assert.True(t, pair.IsActive)
	assert.NotEmpty(t, pair.Embedding)
	assert.Equal(t, "What are your opening hours?", embedder.lastText, "the question is what gets embedded")
	assert.Contains(t, pairs.pairs, pair.ID)
}

func TestKnowledgeService_CreateRejectsEmpty(t *testing.T) {
	svc, _, _, _, _ := newKnowledgeFixture()

	_, err := svc.Create(context.Background(), uuid.New(), dto.KnowledgeItem{Question: " ", Answer: "a"})
	assert.ErrorIs(t, err, ErrEmptyPair)

	_, err = svc.Create(context.Background(), uuid.New(), dto.KnowledgeItem{Question: "q", Answer: ""})
	assert.ErrorIs(t, err, ErrEmptyPair)
}

func TestKnowledgeService_UpdateReembedsOnQuestionChange(t *testing.T) {
	svc, _, embedder, _, _ := newKnowledgeFixture()
	ctx := context.Background()

	pair, err := svc.Create(ctx, uuid.New(), dto.KnowledgeItem{Question: "old question", Answer: "a"})
	require.NoError(t, err)
	callsAfterCreate := embedder.calls

	_, err = svc.Update(ctx, pair.ID, dto.KnowledgeItem{Question: "new question", Answer: "a"})
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate+1, embedder.calls, "changed question triggers one embedding call")

	_, err = svc.Update(ctx, pair.ID, dto.KnowledgeItem{Question: "new question", Answer: "different answer"})
	require.NoError(t, err)
	assert.Equal(t, callsAfterCreate+1, embedder.calls, "answer-only change keeps the embedding")
}

func TestKnowledgeService_Deactivate(t *testing.T) {
	svc, pairs, _, _, _ := newKnowledgeFixture()
	ctx := context.Background()

	pair, err := svc.Create(ctx, uuid.New(), dto.KnowledgeItem{Question: "q", Answer: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, pair.ID))
	assert.False(t, pairs.pairs[pair.ID].IsActive)
}

func TestKnowledgeService_ImportCollectsFailures(t *testing.T) {
	svc, _, _, resolver, deferred := newKnowledgeFixture()

	imported, failures, err := svc.Import(context.Background(), uuid.New(), []dto.KnowledgeItem{
		{Question: "q1", Answer: "a1"},
		{Question: "", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, imported)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "item 2")

	deferred.Wait()
	assert.Equal(t, int32(1), resolver.calls.Load(), "import schedules one auto-resolve pass")
}

func TestKnowledgeService_ImportNothingSkipsAutoResolve(t *testing.T) {
	svc, _, _, resolver, deferred := newKnowledgeFixture()

	imported, failures, err := svc.Import(context.Background(), uuid.New(), []dto.KnowledgeItem{
		{Question: "", Answer: ""},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, imported)
	assert.Len(t, failures, 1)

	deferred.Wait()
	assert.Equal(t, int32(0), resolver.calls.Load())
}
