package service

import (
	"encoding/json"
	"strings"
)

// AssistantReply is the structured result extracted from raw model output.
type AssistantReply struct {
	Answer            string   `json:"answer"`
	SuggestionChips   []string `json:"suggestion_chips"`
	EscalationOffered bool     `json:"escalation_offered"`
}

// ParseAssistantReply extracts the structured reply from raw model text,
// stripping code fences first. When the text is not parseable as the
// expected object the whole raw text becomes the answer: generation output
// must never surface as an error once text was produced.
func ParseAssistantReply(raw string, maxChips int) AssistantReply {
	content := strings.TrimSpace(raw)

	jsonStr := stripCodeFences(content)
	if start, end := strings.Index(jsonStr, "{"), strings.LastIndex(jsonStr, "}"); start != -1 && end > start {
		jsonStr = jsonStr[start : end+1]
	}

	var reply AssistantReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil || strings.TrimSpace(reply.Answer) == "" {
		reply = AssistantReply{Answer: content}
	}

	if reply.SuggestionChips == nil {
		reply.SuggestionChips = []string{}
	}
	if maxChips >= 0 && len(reply.SuggestionChips) > maxChips {
		reply.SuggestionChips = reply.SuggestionChips[:maxChips]
	}

	return reply
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
