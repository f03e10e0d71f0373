package service

import (
	"context"
	"fmt"

	"askbase/internal/llm"
	"askbase/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KnowledgeSearcher is the similarity-search slice of the knowledge store.
type KnowledgeSearcher interface {
	SearchSimilar(ctx context.Context, workspaceID uuid.UUID, embedding []float32, topK int, minSimilarity float64) ([]models.ScoredPair, error)
}

type RAGService struct {
	embedder      llm.Embedder
	knowledge     KnowledgeSearcher
	minSimilarity float64
	logger        *zap.Logger
}

func NewRAGService(embedder llm.Embedder, knowledge KnowledgeSearcher, minSimilarity float64, logger *zap.Logger) *RAGService {
	return &RAGService{
		embedder:      embedder,
		knowledge:     knowledge,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve embeds the query and returns up to topK active knowledge pairs
// for the workspace ranked by descending similarity. Nothing clearing the
// similarity floor yields an empty slice, never an error.
func (s *RAGService) Retrieve(ctx context.Context, workspaceID uuid.UUID, query string, topK int) ([]models.ScoredPair, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.knowledge.SearchSimilar(ctx, workspaceID, embedding, topK, s.minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}
	if results == nil {
		results = []models.ScoredPair{}
	}

	s.logger.Debug("Knowledge search completed",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// TopSimilarity returns the best similarity from a ranked candidate list,
// zero when the list is empty.
func TopSimilarity(results []models.ScoredPair) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Similarity
}

// IsGrounded decides whether retrieval is confident enough to answer from.
// No candidates means a top similarity of zero, which is never grounded.
func IsGrounded(topSimilarity, threshold float64) bool {
	return topSimilarity >= threshold
}
