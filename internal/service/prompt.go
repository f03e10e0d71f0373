package service

import (
	"fmt"
	"strings"

	"askbase/internal/llm"
	"askbase/internal/models"
)

const defaultPersona = "You are a helpful support assistant for this business. Be concise, friendly and professional."

// buildMessages assembles the model conversation: system instruction
// (persona + retrieved context + output rules), a bounded window of the most
// recent prior turns oldest-first, then the current user message. The window
// cap bounds token cost regardless of conversation length.
func buildMessages(ws *models.Workspace, candidates []models.ScoredPair, history []models.ConversationTurn, userMessage string, window int) []llm.Message {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: buildSystemInstruction(ws, candidates)},
	}

	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	for _, turn := range history {
		role := llm.RoleUser
		if turn.Role == models.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}

func buildSystemInstruction(ws *models.Workspace, candidates []models.ScoredPair) string {
	persona := strings.TrimSpace(ws.SystemPrompt)
	if persona == "" {
		persona = defaultPersona
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(buildContextBlock(candidates))
	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Answer ONLY from the knowledge base context above. If the context does not cover the question, say you don't have that information yet and that the team will follow up.\n")
	b.WriteString("- Do not invent facts, prices, policies or URLs that are not in the context.\n")
	b.WriteString(fmt.Sprintf("- Suggest exactly %d short follow-up questions the visitor might ask next.\n", ws.ChipLimit()))
	if ws.EscalationEnabled {
		b.WriteString("- If the visitor shows buying intent or asks to speak with a person, set escalation_offered to true and mention that they can book a call.\n")
	}
	b.WriteString("\nReturn a single JSON object and nothing else, no markdown fences:\n")
	b.WriteString(`{"answer": "your answer", "suggestion_chips": ["q1", "q2"], "escalation_offered": false}`)

	return b.String()
}

func buildContextBlock(candidates []models.ScoredPair) string {
	if len(candidates) == 0 {
		return "KNOWLEDGE BASE CONTEXT:\nNo relevant context was found in the knowledge base."
	}

	var b strings.Builder
	b.WriteString("KNOWLEDGE BASE CONTEXT:\n\n")
	for i, c := range candidates {
		category := c.Pair.Category
		if category == "" {
			category = "general"
		}
		b.WriteString(fmt.Sprintf("%d. [%s] Q: %s\n", i+1, category, c.Pair.Question))
		b.WriteString(fmt.Sprintf("   A: %s\n", c.Pair.Answer))
		b.WriteString(fmt.Sprintf("   (relevance: %.2f)\n\n", c.Similarity))
	}
	return strings.TrimRight(b.String(), "\n")
}
