package models

import (
	"time"

	"github.com/google/uuid"
)

type GapStatus string

const (
	GapStatusOpen      GapStatus = "open"
	GapStatusResolved  GapStatus = "resolved"
	GapStatusDismissed GapStatus = "dismissed"
)

// KnowledgeGap records a visitor question the assistant could not answer
// confidently, queued for human review. Resolved and dismissed are terminal.
type KnowledgeGap struct {
	ID              uuid.UUID  `db:"id"`
	WorkspaceID     uuid.UUID  `db:"workspace_id"`
	SessionID       uuid.UUID  `db:"session_id"`
	Question        string     `db:"question"`
	AIAnswer        string     `db:"ai_answer"`
	BestMatchID     *uuid.UUID `db:"best_match_id"`
	SimilarityScore *float64   `db:"similarity_score"`
	Status          GapStatus  `db:"status"`
	ResolvedPairID  *uuid.UUID `db:"resolved_pair_id"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}
