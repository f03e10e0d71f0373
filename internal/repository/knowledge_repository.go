package repository

import (
	"context"
	"errors"

	"askbase/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeRepository) Create(ctx context.Context, pair *models.KnowledgePair) error {
	query := squirrel.Insert("knowledge_pairs").
		Columns("id", "workspace_id", "question", "answer", "category", "embedding", "is_active", "created_at", "updated_at").
		Values(pair.ID, pair.WorkspaceID, pair.Question, pair.Answer, pair.Category, toVector(pair.Embedding), pair.IsActive, pair.CreatedAt, pair.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Update rewrites question/answer/category/embedding as one unit; the
// embedding is only valid for the question it was generated from.
func (r *KnowledgeRepository) Update(ctx context.Context, pair *models.KnowledgePair) error {
	query := squirrel.Update("knowledge_pairs").
		Set("question", pair.Question).
		Set("answer", pair.Answer).
		Set("category", pair.Category).
		Set("embedding", toVector(pair.Embedding)).
		Set("updated_at", pair.UpdatedAt).
		Where(squirrel.Eq{"id": pair.ID}).
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
		return ErrNotFound
	}
	return nil
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgePair, error) {
	query := squirrel.Select("id", "workspace_id", "question", "answer", "category", "embedding", "is_active", "created_at", "updated_at").
		From("knowledge_pairs").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var pair models.KnowledgePair
	var embedding pgtype.FlatArray[float32]
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&pair.ID, &pair.WorkspaceID, &pair.Question, &pair.Answer, &pair.Category,
		&embedding, &pair.IsActive, &pair.CreatedAt, &pair.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pair.Embedding = []float32(embedding)
	return &pair, nil
}

// SetActive soft-deletes (or restores) a pair.
func (r *KnowledgeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := squirrel.Update("knowledge_pairs").
		Set("is_active", active).
		Where(squirrel.Eq{"id": id}).
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
		return ErrNotFound
	}
	return nil
}

func (r *KnowledgeRepository) CountActive(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("knowledge_pairs").
		Where(squirrel.Eq{"workspace_id": workspaceID, "is_active": true}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilar runs a cosine similarity search scoped to the workspace and
// to active pairs. Rows below minSimilarity are excluded; results are ordered
// by descending similarity with creation time as the tie-breaker. An empty
// result is returned as an empty slice, not an error.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, workspaceID uuid.UUID, embedding []float32, topK int, minSimilarity float64) ([]models.ScoredPair, error) {
	vec := toVector(embedding)

	query := squirrel.Select("id", "workspace_id", "question", "answer", "category", "embedding", "is_active", "created_at", "updated_at").
		Column(squirrel.Expr("1 - (embedding::vector <=> ?::real[]::vector) AS similarity", vec)).
		From("knowledge_pairs").
		Where(squirrel.Eq{"workspace_id": workspaceID, "is_active": true}).
		Where(squirrel.Expr("1 - (embedding::vector <=> ?::real[]::vector) >= ?", vec, minSimilarity)).
		OrderBy("similarity DESC", "created_at ASC").
		Limit(uint64(topK)).
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

	results := []models.ScoredPair{}
	for rows.Next() {
		var pair models.KnowledgePair
		var embeddingData pgtype.FlatArray[float32]
		var similarity float64

		if err := rows.Scan(
			&pair.ID, &pair.WorkspaceID, &pair.Question, &pair.Answer, &pair.Category,
			&embeddingData, &pair.IsActive, &pair.CreatedAt, &pair.UpdatedAt, &similarity,
		); err != nil {
			return nil, err
		}

		pair.Embedding = []float32(embeddingData)
		results = append(results, models.ScoredPair{Pair: pair, Similarity: similarity})
	}

	return results, rows.Err()
}

func toVector(embedding []float32) pgtype.FlatArray[float32] {
	vec := pgtype.FlatArray[float32]{}
	for _, v := range embedding {
		vec = append(vec, v)
	}
	return vec
}
