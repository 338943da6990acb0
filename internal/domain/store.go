package domain

import "github.com/google/uuid"

// ConversationStore holds the ordered message history of one session.
// Append-only, except for the single placeholder rewrite per turn done
// through Replace.
type ConversationStore interface {
	Append(msg Message)
	// Replace overwrites the text of the message with the given id.
	// Returns false if no message matches; a miss must not panic.
	Replace(id uuid.UUID, text string) bool
	Snapshot() []Message
}
