package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"askbase/internal/llm"
	"askbase/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrGapClosed = errors.New("gap is already resolved or dismissed")

// GapStore is the persistence slice the gap workflows need.
type GapStore interface {
	Insert(ctx context.Context, gap *models.KnowledgeGap) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeGap, error)
	ListOpen(ctx context.Context, workspaceID uuid.UUID) ([]*models.KnowledgeGap, error)
	ListByStatus(ctx context.Context, workspaceID uuid.UUID, status models.GapStatus) ([]*models.KnowledgeGap, error)
	MarkResolved(ctx context.Context, id, resolvedPairID uuid.UUID) error
	MarkDismissed(ctx context.Context, id uuid.UUID) error
}

// WorkspaceReader loads workspace configuration.
type WorkspaceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
}

// PairCreator inserts resolved gap answers as new knowledge pairs.
type PairCreator interface {
	Create(ctx context.Context, pair *models.KnowledgePair) error
}

type GapService struct {
	gaps       GapStore
	knowledge  PairCreator
	workspaces WorkspaceReader
	rag        *RAGService
	embedder   llm.Embedder
	logger     *zap.Logger
	now        func() time.Time
}

func NewGapService(gaps GapStore, knowledge PairCreator, workspaces WorkspaceReader, rag *RAGService, embedder llm.Embedder, logger *zap.Logger) *GapService {
	return &GapService{
		gaps:       gaps,
		knowledge:  knowledge,
		workspaces: workspaces,
		rag:        rag,
		embedder:   embedder,
		logger:     logger,
		now:        time.Now,
	}
}

// Record persists a knowledge gap unless an open gap with the same question
// already exists in the workspace. The dedup is exact text equality
// (case-insensitive, trimmed) by design: paraphrased repeats each get their
// own gap, which is cheap and avoids false merges.
func (s *GapService) Record(ctx context.Context, workspaceID, sessionID uuid.UUID, question, aiAnswer string, top *models.ScoredPair) error {
	norm := normalizeQuestion(question)

	open, err := s.gaps.ListOpen(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to list open gaps: %w", err)
	}
	for _, gap := range open {
		if normalizeQuestion(gap.Question) == norm {
			s.logger.Debug("Open gap already exists for question, skipping",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("gap_id", gap.ID.String()),
			)
			return nil
		}
	}

	now := s.now().UTC()
	gap := &models.KnowledgeGap{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		SessionID:   sessionID,
		Question:    question,
		AIAnswer:    aiAnswer,
		Status:      models.GapStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if top != nil {
		matchID := top.Pair.ID
		score := top.Similarity
		gap.BestMatchID = &matchID
		gap.SimilarityScore = &score
	}

	if err := s.gaps.Insert(ctx, gap); err != nil {
		return fmt.Errorf("failed to insert gap: %w", err)
	}

	s.logger.Info("Knowledge gap recorded",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("gap_id", gap.ID.String()),
	)
	return nil
}

// Resolve answers an open gap by hand: a new active knowledge pair is
// created from the gap's question and the supplied answer, then linked.
func (s *GapService) Resolve(ctx context.Context, gapID uuid.UUID, answer, category string) (*models.KnowledgePair, error) {
	gap, err := s.gaps.GetByID(ctx, gapID)
	if err != nil {
		return nil, err
	}
	if gap.Status != models.GapStatusOpen {
		return nil, ErrGapClosed
	}

	embedding, err := s.embedder.Embed(ctx, gap.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	now := s.now().UTC()
	pair := &models.KnowledgePair{
		ID:          uuid.New(),
		WorkspaceID: gap.WorkspaceID,
		Question:    gap.Question,
		Answer:      answer,
		Category:    category,
		Embedding:   embedding,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.knowledge.Create(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to create knowledge pair: %w", err)
	}

	if err := s.gaps.MarkResolved(ctx, gapID, pair.ID); err != nil {
		return nil, err
	}
	return pair, nil
}

// Dismiss closes an open gap without producing a knowledge pair.
func (s *GapService) Dismiss(ctx context.Context, gapID uuid.UUID) error {
	gap, err := s.gaps.GetByID(ctx, gapID)
	if err != nil {
		return err
	}
	if gap.Status != models.GapStatusOpen {
		return ErrGapClosed
	}
	return s.gaps.MarkDismissed(ctx, gapID)
}

func (s *GapService) List(ctx context.Context, workspaceID uuid.UUID, status models.GapStatus) ([]*models.KnowledgeGap, error) {
	return s.gaps.ListByStatus(ctx, workspaceID, status)
}

// AutoResolveReport summarizes one auto-resolve batch.
type AutoResolveReport struct {
	Checked  int
	Resolved int
	Errors   []string
}

// AutoResolve re-evaluates every open gap against the current knowledge base
// and resolves those whose best match now meets the workspace threshold.
// Gaps are processed sequentially to respect embedding-provider rate limits;
// per-gap failures are collected and never abort the batch.
func (s *GapService) AutoResolve(ctx context.Context, workspaceID uuid.UUID) (*AutoResolveReport, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	threshold := ws.Threshold()

	open, err := s.gaps.ListOpen(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open gaps: %w", err)
	}

	report := &AutoResolveReport{Errors: []string{}}
	for _, gap := range open {
		report.Checked++

		results, err := s.rag.Retrieve(ctx, workspaceID, gap.Question, 1)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("gap %s: %v", gap.ID, err))
			continue
		}
		if len(results) == 0 || !IsGrounded(results[0].Similarity, threshold) {
			continue
		}

		if err := s.gaps.MarkResolved(ctx, gap.ID, results[0].Pair.ID); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("gap %s: %v", gap.ID, err))
			continue
		}
		report.Resolved++
	}

	s.logger.Info("Gap auto-resolve completed",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("checked", report.Checked),
		zap.Int("resolved", report.Resolved),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
