package orchestrator

import (
	"context"
	"fmt"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/llm"
)

const defaultChatPrompt = "You are answering a follow-up question about an incident using the evidence already gathered. Be concise and reference specific evidence when possible."

// Chat streams a follow-up answer reusing the evidence already gathered for
// the incident (from cache, or freshly retrieved). It never re-runs the
// agent graph beyond what Retrieve already does. adHocExclusions are applied
// on top of the incident's persisted exclusion set for this call only —
// they are never written to the exclusion store.
func (g *Graph) Chat(ctx context.Context, incident domain.Incident, userMessage string, history []domain.ChatMessage, adHocExclusions []domain.ExcludedItem) (<-chan string, <-chan error) {
	s := g.ContextFor(ctx, incident)
	ApplyAdHocExclusions(s, adHocExclusions)

	systemPrompt := promptOrDefault(g.prompts, AgentChat, defaultChatPrompt)
	evidenceContext := BuildContext(s, g.contextSectionLimitN)

	messages := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Evidence:\n%s\n\nQuestion: %s", evidenceContext, userMessage),
	})

	return g.llmManager.Stream(ctx, incident.ID, domain.PromptTypeChat, systemPrompt, ContextSummary(s, g.contextSectionLimitN), messages, history)
}
