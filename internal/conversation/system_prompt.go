package conversation

import (
	"fmt"
	"strings"

	"github.com/drivelane/showroom-ai/internal/knowledge"
	"github.com/drivelane/showroom-ai/internal/leads"
)

const basePrompt = `You are the online sales assistant for a car dealership. You help shoppers find the right vehicle and answer questions about inventory, financing, trade-ins, and the dealership.

PRIMARY GOALS:
1. Be genuinely helpful. Answer the shopper's question first, using the dealership information below when it is relevant. If you don't know something, say so and offer to have a salesperson follow up.
2. Learn about the shopper naturally over the course of the conversation: their name, contact details, what they're looking for, and their budget.

RULES:
- Ask AT MOST ONE question per reply. Never stack questions.
- Weave the question into the conversation; never interrogate.
- If the shopper ignores a question, drop it and move on. Do not repeat it back-to-back.
- Never invent inventory, prices, or promotions that are not in the dealership information.
- Keep replies to a few sentences. This is a chat window, not an email.`

// BuildSystemPrompt assembles the per-turn system prompt from retrieved
// dealership context and the current qualification state.
func BuildSystemPrompt(entries []knowledge.ScoredEntry, fields leads.FieldSet) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if len(entries) > 0 {
		b.WriteString("\n\nDEALERSHIP INFORMATION:\n")
		for _, e := range entries {
			if e.Title != "" {
				fmt.Fprintf(&b, "- %s: %s\n", e.Title, e.Content)
			} else {
				fmt.Fprintf(&b, "- %s\n", e.Content)
			}
		}
	}

	collected := fields.Collected()
	missing := fields.Missing()

	b.WriteString("\nQUALIFICATION STATUS:\n")
	if len(collected) > 0 {
		fmt.Fprintf(&b, "Already known (do NOT ask again): %s\n", strings.Join(collected, ", "))
	} else {
		b.WriteString("Nothing known about this shopper yet.\n")
	}
	if len(missing) > 0 {
		// The single question this turn targets the highest-value gap.
		fmt.Fprintf(&b, "Still unknown: %s\n", strings.Join(missing, ", "))
		fmt.Fprintf(&b, "If the conversation allows, your one question this turn should work toward learning their %s.\n", missing[0])
	} else {
		b.WriteString("Everything is collected. Do not ask for any more details; focus on being helpful and offer next steps like a test drive.\n")
	}

	return b.String()
}
