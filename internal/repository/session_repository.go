package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"askbase/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SessionRepository) GetByToken(ctx context.Context, workspaceID uuid.UUID, token string) (*models.ConversationSession, error) {
	query := squirrel.Select("id", "workspace_id", "conversation_token", "turns", "escalated", "escalated_at", "created_at", "updated_at").
		From("conversation_sessions").
		Where(squirrel.Eq{"workspace_id": workspaceID, "conversation_token": token}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var session models.ConversationSession
	var turnsData []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&session.ID, &session.WorkspaceID, &session.ConversationToken,
		&turnsData, &session.Escalated, &session.EscalatedAt,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(turnsData, &session.Turns); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return &session, nil
}

// Upsert writes a session keyed on (workspace_id, conversation_token). The
// conflict arm replaces the transcript and keeps escalation monotonic:
// escalated never reverts and escalated_at keeps its first value. Concurrent
// requests for the same token therefore never create two rows.
func (r *SessionRepository) Upsert(ctx context.Context, session *models.ConversationSession) (*models.ConversationSession, error) {
	turnsData, err := json.Marshal(session.Turns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	query := squirrel.Insert("conversation_sessions").
		Columns("id", "workspace_id", "conversation_token", "turns", "escalated", "escalated_at", "created_at", "updated_at").
		Values(session.ID, session.WorkspaceID, session.ConversationToken, turnsData, session.Escalated, session.EscalatedAt, session.CreatedAt, session.UpdatedAt).
		Suffix(`ON CONFLICT (workspace_id, conversation_token) DO UPDATE SET
			turns = EXCLUDED.turns,
			escalated = conversation_sessions.escalated OR EXCLUDED.escalated,
			escalated_at = COALESCE(conversation_sessions.escalated_at, EXCLUDED.escalated_at),
			updated_at = EXCLUDED.updated_at
			RETURNING id, escalated, escalated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	stored := *session
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stored.ID, &stored.Escalated, &stored.EscalatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}
