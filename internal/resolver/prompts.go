package resolver

import (
	"fmt"
	"strings"
)

// DefaultInsufficiencyMarker is the sentinel the structured tier is
// instructed to emit when the aggregate context cannot answer the question.
// The phrase is a contract between structuredPrompt and Resolver.Resolve:
// both must agree on the exact text or the fallback never fires. Keep it
// distinctive enough that it cannot appear inside a legitimate answer.
const DefaultInsufficiencyMarker = "NOT_ENOUGH_CONTEXT_TO_ANSWER"

// structuredPrompt embeds the aggregate narrative and asks the model to
// either answer from it alone or emit the marker verbatim.
func structuredPrompt(narrative, question, marker string) string {
	var b strings.Builder
	b.WriteString("You are answering questions about dog daycare invoices.\n")
	b.WriteString("Use ONLY the context below. Do not invent facts.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(narrative)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "If the context does not contain the information needed to answer, reply with exactly this phrase and nothing else: %s\n\n", marker)
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// fallbackPrompt carries only the retrieved snippets plus the question; the
// structured narrative is deliberately absent, it already failed to answer.
func fallbackPrompt(snippets []string, question string) string {
	var b strings.Builder
	b.WriteString("You are answering questions about dog daycare invoices.\n")
	b.WriteString("Answer using the excerpts below.\n\n")
	for i, s := range snippets {
		fmt.Fprintf(&b, "Excerpt %d:\n%s\n\n", i+1, s)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}
