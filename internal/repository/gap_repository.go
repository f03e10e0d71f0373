package repository

import (
	"context"
	"errors"
	"time"

	"askbase/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrGapNotOpen is returned when a status transition targets a gap that is
// not in the open state. Resolved and dismissed are terminal.
var ErrGapNotOpen = errors.New("gap is not open")

type GapRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGapRepository(db *pgxpool.Pool, logger *zap.Logger) *GapRepository {
	return &GapRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GapRepository) Insert(ctx context.Context, gap *models.KnowledgeGap) error {
	query := squirrel.Insert("knowledge_gaps").
		Columns("id", "workspace_id", "session_id", "question", "ai_answer", "best_match_id", "similarity_score", "status", "resolved_pair_id", "created_at", "updated_at").
		Values(gap.ID, gap.WorkspaceID, gap.SessionID, gap.Question, gap.AIAnswer, gap.BestMatchID, gap.SimilarityScore, gap.Status, gap.ResolvedPairID, gap.CreatedAt, gap.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *GapRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeGap, error) {
	query := gapSelect().
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	gap, err := scanGap(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return gap, err
}

func (r *GapRepository) ListOpen(ctx context.Context, workspaceID uuid.UUID) ([]*models.KnowledgeGap, error) {
	return r.ListByStatus(ctx, workspaceID, models.GapStatusOpen)
}

func (r *GapRepository) ListByStatus(ctx context.Context, workspaceID uuid.UUID, status models.GapStatus) ([]*models.KnowledgeGap, error) {
	query := gapSelect().
		Where(squirrel.Eq{"workspace_id": workspaceID, "status": status}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gaps := []*models.KnowledgeGap{}
	for rows.Next() {
		gap, err := scanGap(rows)
		if err != nil {
			return nil, err
		}
		gaps = append(gaps, gap)
	}
	return gaps, rows.Err()
}

func (r *GapRepository) MarkResolved(ctx context.Context, id, resolvedPairID uuid.UUID) error {
	return r.transition(ctx, id, models.GapStatusResolved, &resolvedPairID)
}

func (r *GapRepository) MarkDismissed(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, models.GapStatusDismissed, nil)
}

func (r *GapRepository) transition(ctx context.Context, id uuid.UUID, status models.GapStatus, resolvedPairID *uuid.UUID) error {
	query := squirrel.Update("knowledge_gaps").
		Set("status", status).
		Set("resolved_pair_id", resolvedPairID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": models.GapStatusOpen}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGapNotOpen
	}
	return nil
}

func gapSelect() squirrel.SelectBuilder {
	return squirrel.Select("id", "workspace_id", "session_id", "question", "ai_answer", "best_match_id", "similarity_score", "status", "resolved_pair_id", "created_at", "updated_at").
		From("knowledge_gaps")
}

func scanGap(row pgx.Row) (*models.KnowledgeGap, error) {
	var gap models.KnowledgeGap
	err := row.Scan(
		&gap.ID, &gap.WorkspaceID, &gap.SessionID, &gap.Question, &gap.AIAnswer,
		&gap.BestMatchID, &gap.SimilarityScore, &gap.Status, &gap.ResolvedPairID,
		&gap.CreatedAt, &gap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &gap, nil
}
