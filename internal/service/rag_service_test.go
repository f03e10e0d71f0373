package service

import (
	"context"
	"errors"
	"testing"

	"askbase/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestRAGService_Retrieve(t *testing.T) {
	searcher := &fakeSearcher{results: []models.ScoredPair{scoredPair(0.9), scoredPair(0.7)}}
	svc := NewRAGService(&fakeEmbedder{}, searcher, 0.3, zap.NewNop())

	results, err := svc.Retrieve(context.Background(), uuid.New(), "opening hours", 5)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 5, searcher.gotTopK)
	assert.Equal(t, 0.3, searcher.gotMin)
}

func TestRAGService_RetrieveEmptyIsNotError(t *testing.T) {
	svc := NewRAGService(&fakeEmbedder{}, &fakeSearcher{results: nil}, 0.3, zap.NewNop())

	results, err := svc.Retrieve(context.Background(), uuid.New(), "anything", 5)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRAGService_EmbedFailure(t *testing.T) {
	embedErr := errors.New("embedding provider down")
	svc := NewRAGService(&fakeEmbedder{err: embedErr}, &fakeSearcher{}, 0.3, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), uuid.New(), "anything", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, embedErr)
}

func TestIsGrounded_Boundary(t *testing.T) {
	assert.True(t, IsGrounded(0.78, 0.78), "similarity equal to threshold is grounded")
	assert.True(t, IsGrounded(0.79, 0.78))
	assert.False(t, IsGrounded(0.7799, 0.78))
	assert.False(t, IsGrounded(0, 0.78), "no candidates is never grounded")
}

func TestTopSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, TopSimilarity(nil))
	assert.Equal(t, 0.0, TopSimilarity([]models.ScoredPair{}))
	assert.Equal(t, 0.9, TopSimilarity([]models.ScoredPair{scoredPair(0.9), scoredPair(0.4)}))
}
