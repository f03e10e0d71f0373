package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single entry in a session transcript. MessageID is
// supplied by the caller for user turns and acts as the idempotency key.
type ConversationTurn struct {
	MessageID         string      `json:"message_id"`
	Role              Role        `json:"role"`
	Content           string      `json:"content"`
	Timestamp         time.Time   `json:"timestamp"`
	Confidence        *float64    `json:"confidence,omitempty"`
	MatchedPairIDs    []uuid.UUID `json:"matched_pair_ids,omitempty"`
	SuggestionChips   []string    `json:"suggestion_chips,omitempty"`
	GapDetected       bool        `json:"gap_detected,omitempty"`
	EscalationOffered bool        `json:"escalation_offered,omitempty"`
}

type ConversationSession struct {
	ID                uuid.UUID          `db:"id"`
	WorkspaceID       uuid.UUID          `db:"workspace_id"`
	ConversationToken string             `db:"conversation_token"`
	Turns             []ConversationTurn `db:"turns"`
	Escalated         bool               `db:"escalated"`
	EscalatedAt       *time.Time         `db:"escalated_at"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
}

// CachedAnswer looks up a user turn by message id and returns the assistant
// turn immediately following it, if any. Used for idempotent retries.
func (s *ConversationSession) CachedAnswer(messageID string) *ConversationTurn {
	if messageID == "" {
		return nil
	}
	for i, turn := range s.Turns {
		if turn.Role == RoleUser && turn.MessageID == messageID {
			if i+1 < len(s.Turns) && s.Turns[i+1].Role == RoleAssistant {
				return &s.Turns[i+1]
			}
			return nil
		}
	}
	return nil
}
