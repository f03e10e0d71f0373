package repository

import (
	"context"
	"errors"

	"askbase/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type WorkspaceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkspaceRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	query := squirrel.Select("id", "name", "system_prompt", "confidence_threshold", "max_suggestion_chips", "escalation_enabled", "booking_url", "provider", "model", "api_credential", "created_at", "updated_at").
		From("workspaces").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var ws models.Workspace
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&ws.ID, &ws.Name, &ws.SystemPrompt, &ws.ConfidenceThreshold,
		&ws.MaxSuggestionChips, &ws.EscalationEnabled, &ws.BookingURL,
		&ws.Provider, &ws.Model, &ws.APICredential, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	query := squirrel.Insert("workspaces").
		Columns("id", "name", "system_prompt", "confidence_threshold", "max_suggestion_chips", "escalation_enabled", "booking_url", "provider", "model", "api_credential", "created_at", "updated_at").
		Values(ws.ID, ws.Name, ws.SystemPrompt, ws.ConfidenceThreshold, ws.MaxSuggestionChips, ws.EscalationEnabled, ws.BookingURL, ws.Provider, ws.Model, ws.APICredential, ws.CreatedAt, ws.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
