package chat

import (
	"fmt"
	"strings"
)

const tutorSystemPrompt = `You are Nibble AI, a friendly food-literacy tutor. Answer questions about nutrition, reading food labels, food safety, budgeting for food and marketing claims in plain language. Keep answers short: a few sentences or a short bulleted list. You are not a doctor; for medical or allergy concerns, suggest speaking to a professional.`

func buildSystemPrompt(summary string) string {
	if summary == "" {
		return tutorSystemPrompt
	}
	return tutorSystemPrompt + "\n\nEarlier in this conversation:\n" + summary
}

const summarySystemPrompt = `You are summarizing the earlier part of a conversation between a learner and a food-literacy tutor. The summary is used as context for the tutor's next replies.`

func buildSummaryUserMessage(turns []Turn) string {
	var b strings.Builder

	b.WriteString("Conversation:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.speaker(), t.Text)
	}

	b.WriteString(`
Instructions:
Summarize the conversation in 2-4 sentences. Keep:
- The topics the learner asked about
- Any facts about the learner they shared (goals, dietary constraints, budget)
- Advice already given, so it is not repeated

Be concise and factual.`)

	return b.String()
}
