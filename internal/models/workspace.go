package models

import (
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderGigaChat Provider = "gigachat"
)

const (
	DefaultConfidenceThreshold = 0.78
	MinConfidenceThreshold     = 0.5
	MaxConfidenceThreshold     = 0.95
	DefaultSuggestionChips     = 3
)

type Workspace struct {
	ID                  uuid.UUID `db:"id"`
	Name                string    `db:"name"`
	SystemPrompt        string    `db:"system_prompt"`
	ConfidenceThreshold float64   `db:"confidence_threshold"`
	MaxSuggestionChips  int       `db:"max_suggestion_chips"`
	EscalationEnabled   bool      `db:"escalation_enabled"`
	BookingURL          string    `db:"booking_url"`
	Provider            Provider  `db:"provider"`
	Model               string    `db:"model"`
	APICredential       string    `db:"api_credential"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Threshold returns the workspace confidence threshold clamped to the
// supported range, falling back to the default when unset.
func (w *Workspace) Threshold() float64 {
	t := w.ConfidenceThreshold
	if t == 0 {
		return DefaultConfidenceThreshold
	}
	if t < MinConfidenceThreshold {
		return MinConfidenceThreshold
	}
	if t > MaxConfidenceThreshold {
		return MaxConfidenceThreshold
	}
	return t
}

func (w *Workspace) ChipLimit() int {
	if w.MaxSuggestionChips <= 0 {
		return DefaultSuggestionChips
	}
	return w.MaxSuggestionChips
}
