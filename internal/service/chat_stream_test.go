package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"askbase/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain collects every delta until the fragment channel closes.
func drain(t *testing.T, cs *ChatStream) string {
	t.Helper()
	var b strings.Builder
	for chunk := range cs.Fragments() {
		require.NoError(t, chunk.Err)
		b.WriteString(chunk.Delta)
	}
	return b.String()
}

func TestChatService_SendStreamEquivalence(t *testing.T) {
	f := newChatFixture()
	f.generator.streamDeltas = []string{"We open", " at 9", " on weekdays."}
	f.generator.reply = "" // streaming path only

	cs, err := f.svc.SendStream(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	full := drain(t, cs)
	assert.Equal(t, "We open at 9 on weekdays.", full, "fragments concatenate to the full text")

	resp, err := cs.Final()
	require.NoError(t, err)
	assert.Equal(t, "We open at 9 on weekdays.", resp.Answer, "plain text streams parse via the raw fallback")
	assert.Equal(t, 0.91, resp.Confidence)
	assert.Equal(t, 2, resp.TurnCount)
}

func TestChatService_SendStreamStructuredFinal(t *testing.T) {
	f := newChatFixture()
	raw := `{"answer": "We open at 9.", "suggestion_chips": ["Do you take walk-ins?"], "escalation_offered": false}`
	f.generator.streamDeltas = []string{raw[:20], raw[20:]}

	cs, err := f.svc.SendStream(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	full := drain(t, cs)
	assert.Equal(t, raw, full, "the wire carries raw model output")

	resp, err := cs.Final()
	require.NoError(t, err)
	assert.Equal(t, "We open at 9.", resp.Answer, "the final event carries the parsed answer")
	assert.Equal(t, []string{"Do you take walk-ins?"}, resp.SuggestionChips)
}

func TestChatService_SendStreamPersistsAfterDelivery(t *testing.T) {
	f := newChatFixture()
	f.searcher.results = []models.ScoredPair{scoredPair(0.3)}
	f.generator.streamDeltas = []string{"I don't have that information yet."}

	cs, err := f.svc.SendStream(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	drain(t, cs)
	resp, err := cs.Final()
	require.NoError(t, err)
	assert.True(t, resp.GapDetected)

	f.deferred.Wait()
	require.Len(t, f.sessions.upserts, 1)
	assert.Len(t, f.sessions.upserts[0].Turns, 2)
	require.Len(t, f.gaps.records, 1)
	assert.Equal(t, "When do you open?", f.gaps.records[0].question)
}

func TestChatService_SendStreamMidStreamFailure(t *testing.T) {
	f := newChatFixture()
	streamErr := errors.New("connection reset")
	f.generator.streamDeltas = []string{"We op"}
	f.generator.streamErr = streamErr

	cs, err := f.svc.SendStream(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	var got strings.Builder
	var terminalErr error
	for chunk := range cs.Fragments() {
		got.WriteString(chunk.Delta)
		if chunk.Done {
			terminalErr = chunk.Err
		}
	}
	assert.Equal(t, "We op", got.String(), "delivered fragments are never retracted")
	assert.ErrorIs(t, terminalErr, streamErr)

	_, err = cs.Final()
	assert.ErrorIs(t, err, streamErr)

	f.deferred.Wait()
	assert.Empty(t, f.sessions.upserts, "incomplete answers are not persisted")
	assert.Empty(t, f.gaps.records)
}

func TestChatService_SendStreamAdvisory(t *testing.T) {
	f := newChatFixture()
	f.counter.count = 0

	cs, err := f.svc.SendStream(context.Background(), f.workspace.ID, chatRequest())
	require.NoError(t, err)

	full := drain(t, cs)
	assert.Equal(t, NotConfiguredAdvisory, full)

	resp, err := cs.Final()
	require.NoError(t, err)
	assert.Equal(t, NotConfiguredAdvisory, resp.Answer)
}

func TestChatService_SendStreamIdempotentReplay(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	req := chatRequest()
	req.MessageID = "msg-1"
	_, err := f.svc.Send(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	cs, err := f.svc.SendStream(ctx, f.workspace.ID, req)
	require.NoError(t, err)

	full := drain(t, cs)
	assert.Equal(t, "We open at 9.", full)

	resp, err := cs.Final()
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TurnCount)
	assert.Equal(t, 1, f.generator.completeCalls, "replay produces no new generation")
}
