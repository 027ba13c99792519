// Package prompt builds the backend-agnostic instruction block sent to
// every model tier. Composition is a pure function of the knowledge-base
// context: same input, same output, no I/O.
package prompt

const (
	// personaPolicy is the fixed system policy shared by all tiers. Replies
	// are spoken aloud by the voice stack, so markdown is forbidden and
	// answers must stay short.
	personaPolicy = "You are Velox, a professional voice AI assistant. " +
		"Keep answers concise - under two sentences. " +
		"Do not use markdown formatting; your reply will be spoken aloud."

	knowledgeBaseHeader = "=== KNOWLEDGE BASE ==="
	knowledgeBaseFooter = "======================"
)

// Compose returns the instruction block for a request. The persona policy is
// always present; non-empty context is appended between delimiters so any
// backend can separate system policy from retrieved material.
func Compose(context string) string {
	if context == "" {
		return personaPolicy
	}
	return personaPolicy + "\n\n" +
		knowledgeBaseHeader + "\n" +
		context + "\n" +
		knowledgeBaseFooter + "\n"
}

// PersonaPolicy exposes the fixed policy text.
func PersonaPolicy() string {
	return personaPolicy
}
