package models

// Request is a single inbound conversational turn handed to the routing
// engine. The correlation identifiers are carried through for logging and
// tracing only; routing never interprets them.
type Request struct {
	// Utterance is the user's message. The boundary layer guarantees it is
	// non-empty after trimming.
	Utterance string

	// Context is optional knowledge-base material to ground the reply.
	Context string

	// ConversationID correlates all turns of one conversation.
	ConversationID string

	// CallID identifies the voice call this turn belongs to.
	CallID string

	// AgentID identifies the configured agent persona.
	AgentID string
}

// RoutedResponse is the unified reply returned by the routing engine.
// Tier and Model always reflect the backend that actually generated Text,
// never the originally classified tier when a fallback occurred.
type RoutedResponse struct {
	Text  string
	Tier  Tier
	Model string
}
