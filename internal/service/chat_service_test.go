package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"askbase/internal/dto"
	"askbase/internal/llm"
	"askbase/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func chatRequest() *dto.ChatRequest {
	return &dto.ChatRequest{
		ConversationToken: "visitor-1",
		Message:           "When do you open?",
	}
}

func TestChatService_SendGrounded(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.Equal(t, "We open at 9.", resp.Answer)
	assert.Equal(t, []string{"Do you take walk-ins?"}, resp.SuggestionChips)
	assert.Equal(t, 0.91, resp.Confidence)
	assert.False(t, resp.GapDetected)
	assert.False(t, resp.EscalationOffered)
	assert.Empty(t, resp.BookingURL)
	assert.Len(t, resp.MatchedPairs, 1)
	assert.Equal(t, 2, resp.TurnCount)

	assert.Empty(t, f.gaps.records, "grounded answers record no gap")
	require.Len(t, f.sessions.upserts, 1)
	stored := f.sessions.upserts[0]
	require.Len(t, stored.Turns, 2)
	assert.Equal(t, models.RoleUser, stored.Turns[0].Role)
	assert.Equal(t, "When do you open?", stored.Turns[0].Content)
	assert.Equal(t, models.RoleAssistant, stored.Turns[1].Role)
	assert.NotEmpty(t, stored.Turns[0].MessageID, "user turns get a generated id when none is supplied")
}

func TestChatService_SendUngroundedRecordsGap(t *testing.T) {
	f := newChatFixture()
	f.searcher.results = []models.ScoredPair{scoredPair(0.41)}
	f.generator.reply = `{"answer": "I don't have that information yet.", "suggestion_chips": [], "escalation_offered": false}`

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.True(t, resp.GapDetected)
	assert.Equal(t, 0.41, resp.Confidence)

	require.Len(t, f.gaps.records, 1)
	rec := f.gaps.records[0]
	assert.Equal(t, f.workspace.ID, rec.workspaceID)
	assert.Equal(t, "When do you open?", rec.question)
	require.NotNil(t, rec.top)
	assert.Equal(t, 0.41, rec.top.Similarity)
}

func TestChatService_SendNoCandidatesRecordsGap(t *testing.T) {
	f := newChatFixture()
	f.searcher.results = nil

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.True(t, resp.GapDetected)
	assert.Equal(t, 0.0, resp.Confidence)
	require.Len(t, f.gaps.records, 1)
	assert.Nil(t, f.gaps.records[0].top)
}

func TestChatService_Validation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.workspace.ID, &dto.ChatRequest{ConversationToken: "t", Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.svc.Send(ctx, f.workspace.ID, &dto.ChatRequest{ConversationToken: "t", Message: strings.Repeat("x", 4001)})
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = f.svc.Send(ctx, f.workspace.ID, &dto.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = f.svc.Send(ctx, uuid.New(), chatRequest())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestChatService_RateLimitAdvisory(t *testing.T) {
	f := newChatFixture()
	f.svc.limiter = NewRateLimiter(time.Hour, 1, zap.NewNop())
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.workspace.ID, chatRequest())
	require.NoError(t, err)

	resp, err := f.svc.Send(ctx, f.workspace.ID, chatRequest())
	require.NoError(t, err, "rate limiting is an advisory answer, not an error")

	assert.Equal(t, RateLimitAdvisory, resp.Answer)
	assert.False(t, resp.GapDetected)
	assert.Equal(t, 1, f.generator.completeCalls, "the limited request never reaches generation")
	assert.Len(t, f.sessions.upserts, 1, "advisories are not persisted")
}

func TestChatService_EmptyKnowledgeBaseAdvisory(t *testing.T) {
	f := newChatFixture()
	f.counter.count = 0

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.Equal(t, NotConfiguredAdvisory, resp.Answer)
	assert.Zero(t, f.generator.completeCalls)
	assert.Empty(t, f.sessions.upserts)
	assert.Empty(t, f.gaps.records, "an unconfigured workspace produces no gaps")
}

func TestChatService_NoCredential(t *testing.T) {
	f := newChatFixture()
	f.svc.generators = &fakeFactory{err: llm.ErrNoCredential}

	_, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	assert.ErrorIs(t, err, llm.ErrNoCredential)
}

func TestChatService_IdempotentReplay(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	req := chatRequest()
	req.MessageID = "msg-1"

	first, err := f.svc.Send(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	second, err := f.svc.Send(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.SuggestionChips, second.SuggestionChips)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, f.generator.completeCalls, "the retry must not regenerate")

	session := f.sessions.upserts[len(f.sessions.upserts)-1]
	assert.Len(t, session.Turns, 2, "the retry appends no turns")
}

func TestChatService_NewMessageIDAppendsTurns(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	req := chatRequest()
	req.MessageID = "msg-1"
	_, err := f.svc.Send(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	req2 := chatRequest()
	req2.Message = "Do you take walk-ins?"
	req2.MessageID = "msg-2"
	resp, err := f.svc.Send(ctx, f.workspace.ID, req2)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TurnCount)
	assert.Equal(t, 2, f.generator.completeCalls)
}

func TestChatService_EscalationMonotonic(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return base }

	f.generator.reply = `{"answer": "Happy to connect you.", "suggestion_chips": [], "escalation_offered": true}`
	resp, err := f.svc.Send(ctx, f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.True(t, resp.EscalationOffered)
	assert.Equal(t, f.workspace.BookingURL, resp.BookingURL)

	session := f.sessions.upserts[0]
	require.True(t, session.Escalated)
	require.NotNil(t, session.EscalatedAt)
	firstEscalatedAt := *session.EscalatedAt

	// A later non-escalating turn must not clear the flag or move the time.
	f.svc.now = func() time.Time { return base.Add(time.Hour) }
	f.generator.reply = `{"answer": "We open at 9.", "suggestion_chips": [], "escalation_offered": false}`
	req := chatRequest()
	req.Message = "And opening hours?"
	_, err = f.svc.Send(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	session = f.sessions.upserts[len(f.sessions.upserts)-1]
	assert.True(t, session.Escalated)
	require.NotNil(t, session.EscalatedAt)
	assert.Equal(t, firstEscalatedAt, *session.EscalatedAt)
}

func TestChatService_BookingURLOnlyWhenEnabled(t *testing.T) {
	f := newChatFixture()
	f.workspace.EscalationEnabled = false
	f.generator.reply = `{"answer": "Sure.", "suggestion_chips": [], "escalation_offered": true}`

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.True(t, resp.EscalationOffered)
	assert.Empty(t, resp.BookingURL)
}

func TestChatService_PersistenceFailuresDoNotFailTheAnswer(t *testing.T) {
	f := newChatFixture()
	f.sessions.upsertErr = errors.New("db down")
	f.searcher.results = []models.ScoredPair{scoredPair(0.2)}
	f.gaps.err = errors.New("db down")

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.True(t, resp.GapDetected)
}

func TestChatService_GenerationFailureSurfaces(t *testing.T) {
	f := newChatFixture()
	f.generator.err = errors.New("upstream 500")

	_, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")
	assert.Empty(t, f.sessions.upserts, "failed generations leave no transcript")
}

func TestChatService_PlainTextReplyFallback(t *testing.T) {
	f := newChatFixture()
	f.generator.reply = "We open at nine."

	resp, err := f.svc.Send(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	assert.Equal(t, "We open at nine.", resp.Answer)
	assert.Empty(t, resp.SuggestionChips)
}
