package dto

type ChatRequest struct {
	ConversationToken string `json:"conversation_token"`
	Message           string `json:"message"`
	MessageID         string `json:"message_id,omitempty"`
	Stream            bool   `json:"stream,omitempty"`
}

type ChatResponse struct {
	Answer            string   `json:"answer"`
	SuggestionChips   []string `json:"suggestion_chips"`
	Confidence        float64  `json:"confidence"`
	GapDetected       bool     `json:"gap_detected"`
	EscalationOffered bool     `json:"escalation_offered"`
	BookingURL        string   `json:"booking_url,omitempty"`
	MatchedPairs      []string `json:"matched_pairs"`
	SessionID         string   `json:"session_id,omitempty"`
	TurnCount         int      `json:"turn_count"`
}

// StreamToken is the payload of a single SSE "token" event.
type StreamToken struct {
	Content string `json:"content"`
}

// StreamDone is the payload of the terminal SSE "done" event. Answer carries
// the parsed full answer so clients can reconcile raw streamed text with the
// structured result.
type StreamDone struct {
	Answer            string   `json:"answer"`
	SuggestionChips   []string `json:"suggestion_chips"`
	Confidence        float64  `json:"confidence"`
	GapDetected       bool     `json:"gap_detected"`
	EscalationOffered bool     `json:"escalation_offered"`
	BookingURL        string   `json:"booking_url,omitempty"`
	MatchedPairs      []string `json:"matched_pairs"`
	SessionID         string   `json:"session_id,omitempty"`
	TurnCount         int      `json:"turn_count"`
}

type StreamError struct {
	Error string `json:"error"`
}
