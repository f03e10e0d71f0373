package dto

type GapResponse struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	AIAnswer        string   `json:"ai_answer,omitempty"`
	BestMatchID     string   `json:"best_match_id,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Status          string   `json:"status"`
	ResolvedPairID  string   `json:"resolved_pair_id,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

type ResolveGapRequest struct {
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

type AutoResolveResponse struct {
	Checked  int      `json:"checked"`
	Resolved int      `json:"resolved"`
	Errors   []string `json:"errors"`
}
