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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEmptyPair = errors.New("question and answer are required")

// KnowledgeStore is the pair-management slice of the knowledge repository.
type KnowledgeStore interface {
	Create(ctx context.Context, pair *models.KnowledgePair) error
	Update(ctx context.Context, pair *models.KnowledgePair) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgePair, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// GapAutoResolver re-checks open gaps after bulk knowledge writes.
type GapAutoResolver interface {
	AutoResolve(ctx context.Context, workspaceID uuid.UUID) (*AutoResolveReport, error)
}

type KnowledgeService struct {
	knowledge KnowledgeStore
	embedder  llm.Embedder
	gaps      GapAutoResolver
	deferred  *DeferredRunner
	logger    *zap.Logger
	now       func() time.Time
}

func NewKnowledgeService(knowledge KnowledgeStore, embedder llm.Embedder, gaps GapAutoResolver, deferred *DeferredRunner, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		knowledge: knowledge,
		embedder:  embedder,
		gaps:      gaps,
		deferred:  deferred,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *KnowledgeService) Create(ctx context.Context, workspaceID uuid.UUID, item dto.KnowledgeItem) (*models.KnowledgePair, error) {
	question := strings.TrimSpace(item.Question)
	answer := strings.TrimSpace(item.Answer)
	if question == "" || answer == "" {
		return nil, ErrEmptyPair
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	now := s.now().UTC()
	pair := &models.KnowledgePair{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Question:    question,
		Answer:      answer,
		Category:    strings.TrimSpace(item.Category),
		Embedding:   embedding,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.knowledge.Create(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to create knowledge pair: %w", err)
	}
	return pair, nil
}

// Update rewrites a pair. A changed question invalidates the stored
// embedding, so it is regenerated before the write.
func (s *KnowledgeService) Update(ctx context.Context, pairID uuid.UUID, item dto.KnowledgeItem) (*models.KnowledgePair, error) {
	question := strings.TrimSpace(item.Question)
	answer := strings.TrimSpace(item.Answer)
	if question == "" || answer == "" {
		return nil, ErrEmptyPair
	}

	pair, err := s.knowledge.GetByID(ctx, pairID)
	if err != nil {
		return nil, err
	}

	if question != pair.Question {
		embedding, err := s.embedder.Embed(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("failed to embed question: %w", err)
		}
		pair.Embedding = embedding
	}

	pair.Question = question
	pair.Answer = answer
	pair.Category = strings.TrimSpace(item.Category)
	pair.UpdatedAt = s.now().UTC()

	if err := s.knowledge.Update(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *KnowledgeService) Deactivate(ctx context.Context, pairID uuid.UUID) error {
	return s.knowledge.SetActive(ctx, pairID, false)
}

// Import bulk-loads pairs sequentially (one embedding call each) and then
// schedules a gap auto-resolve pass. The pass is best-effort: its failure
// never fails the import.
func (s *KnowledgeService) Import(ctx context.Context, workspaceID uuid.UUID, items []dto.KnowledgeItem) (int, []string, error) {
	imported := 0
	failed := []string{}

	for i, item := range items {
		if _, err := s.Create(ctx, workspaceID, item); err != nil {
			failed = append(failed, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		imported++
	}

	if imported > 0 {
		s.deferred.Run("gap-auto-resolve", func(ctx context.Context) error {
			_, err := s.gaps.AutoResolve(ctx, workspaceID)
			return err
		})
	}

	s.logger.Info("Knowledge import completed",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("imported", imported),
		zap.Int("failed", len(failed)),
	)
	return imported, failed, nil
}
