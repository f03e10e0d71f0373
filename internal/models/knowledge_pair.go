package models

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgePair struct {
	ID          uuid.UUID `db:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id"`
	Question    string    `db:"question"`
	Answer      string    `db:"answer"`
	Category    string    `db:"category"`
	Embedding   []float32 `db:"embedding"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ScoredPair is a knowledge pair returned from similarity search together
// with its cosine similarity to the query, in [0, 1].
type ScoredPair struct {
	Pair       KnowledgePair
	Similarity float64
}
