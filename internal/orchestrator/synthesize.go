package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/llm"
	"smartrecover.dev/engine/internal/store"
)

const contextSummaryMaxLen = 200

// synthesisInstructions is what the LLM is instructed to return: plain
// JSON rather than free text, so the resolution can be rendered as
// structured fields instead of re-parsing prose.
const synthesisInstructions = `Respond with a single JSON object only, no markdown fencing, matching exactly:
{"summary": string, "resolution_steps": [string, ...]}`

// BuildSynthesisSystemPrompt composes the synthesis agent's own prompt with
// each evidence agent's prompt as guidance, since every agent contributes a
// `default_prompt` but only the synthesis and chat prompts are ever
// sent to the LLM directly — evidence-agent prompts describe how their
// section of the context should be weighted by the model.
func BuildSynthesisSystemPrompt(prompts *store.PromptStore, agents []Agent) string {
	var b strings.Builder
	b.WriteString(promptOrDefault(prompts, AgentSynthesis, defaultSynthesisPrompt))
	b.WriteString("\n\n")
	for _, a := range agents {
		fmt.Fprintf(&b, "%s guidance: %s\n", a.Name(), promptOrDefault(prompts, a.Name(), a.DefaultPrompt()))
	}
	b.WriteString("\n")
	b.WriteString(synthesisInstructions)
	return b.String()
}

const defaultSynthesisPrompt = "You are an incident-resolution assistant. Given the evidence context below, produce a concise summary of the likely root cause and a numbered list of concrete resolution steps."

func promptOrDefault(prompts *store.PromptStore, agent, fallback string) string {
	if prompts == nil {
		return fallback
	}
	rec, err := prompts.Get(agent)
	if err != nil {
		return fallback
	}
	return rec.Current
}

type synthesisPayload struct {
	Summary         string   `json:"summary"`
	ResolutionSteps []string `json:"resolution_steps"`
}

// Synthesize calls the LLM to produce a Resolution from the (already
// exclusion-filtered) State. On malformed LLM JSON output, the raw content
// becomes the summary with no steps rather than failing the request —
// synthesis must still return something usable.
func Synthesize(ctx context.Context, manager *llm.Manager, prompts *store.PromptStore, agents []Agent, s *State, contextSectionLimitN int) (domain.Resolution, error) {
	systemPrompt := BuildSynthesisSystemPrompt(prompts, agents)
	evidenceContext := BuildContext(s, contextSectionLimitN)

	userMessage := fmt.Sprintf("Incident: %s\n%s\n\nUser question: %s\n\nEvidence:\n%s",
		s.Incident.Title, s.Incident.Description, s.UserQuery, evidenceContext)

	content, err := manager.Complete(ctx, s.IncidentID, domain.PromptTypeSynthesis, systemPrompt, ContextSummary(s, contextSectionLimitN),
		[]llm.Message{{Role: "user", Content: userMessage}}, nil)
	if err != nil {
		return domain.Resolution{}, err
	}

	payload := parseSynthesisPayload(content)
	s.Synthesis = payload.Summary

	related := relatedKnowledge(s)
	correlated := correlatedChanges(s)

	return domain.Resolution{
		IncidentID:        s.IncidentID,
		Summary:           payload.Summary,
		ResolutionSteps:   payload.ResolutionSteps,
		RelatedKnowledge:  related,
		CorrelatedChanges: correlated,
		Confidence:        Confidence(s),
	}, nil
}

func parseSynthesisPayload(content string) synthesisPayload {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var payload synthesisPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &payload); err != nil {
		return synthesisPayload{Summary: content}
	}
	return payload
}

func relatedKnowledge(s *State) []domain.KnowledgeArticle {
	if s.ConfluenceResults == nil {
		return nil
	}
	return s.ConfluenceResults.Documents
}

func correlatedChanges(s *State) []domain.ChangeRecord {
	if s.ChangeResults == nil {
		return nil
	}
	return s.ChangeResults.AllCorrelations
}

// ContextSummary truncates evidence context to a bounded length for the
// PromptLog record.
func ContextSummary(s *State, contextSectionLimitN int) string {
	full := BuildContext(s, contextSectionLimitN)
	if len(full) <= contextSummaryMaxLen {
		return full
	}
	return full[:contextSummaryMaxLen]
}
