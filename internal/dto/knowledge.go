package dto

type KnowledgeItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

type KnowledgeResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ImportKnowledgeRequest struct {
	Items []KnowledgeItem `json:"items"`
}

type ImportKnowledgeResponse struct {
	Imported int      `json:"imported"`
	Failed   []string `json:"failed,omitempty"`
}

type SessionResponse struct {
	ID                string        `json:"id"`
	ConversationToken string        `json:"conversation_token"`
	Escalated         bool          `json:"escalated"`
	EscalatedAt       string        `json:"escalated_at,omitempty"`
	TurnCount         int           `json:"turn_count"`
	Turns             []SessionTurn `json:"turns"`
}

type SessionTurn struct {
	MessageID         string   `json:"message_id"`
	Role              string   `json:"role"`
	Content           string   `json:"content"`
	Timestamp         string   `json:"timestamp"`
	Confidence        *float64 `json:"confidence,omitempty"`
	SuggestionChips   []string `json:"suggestion_chips,omitempty"`
	GapDetected       bool     `json:"gap_detected,omitempty"`
	EscalationOffered bool     `json:"escalation_offered,omitempty"`
}
