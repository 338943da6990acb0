package chat

import (
	"strings"

	"docchat-assistant/internal/domain"
)

// Wire roles expected by the completion endpoint.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Entry is one role/content pair of the outgoing payload.
type Entry struct {
	Role string
	Text string
}

// BuildPayload maps the history to wire entries and appends one final user
// entry carrying the newest input combined with the pending document text.
// History is the store as it existed before this turn appended anything, so
// neither the new user message nor the placeholder can leak into the wire.
// Pure: identical inputs always produce an identical payload.
func BuildPayload(history []domain.Message, input, docText string) []Entry {
	entries := make([]Entry, 0, len(history)+1)
	for _, m := range history {
		entries = append(entries, Entry{
			Role: RoleForSender(m.Sender),
			Text: m.Text,
		})
	}
	entries = append(entries, Entry{
		Role: RoleUser,
		Text: CombineInput(input, docText),
	})
	return entries
}

// CombineInput joins the typed input with the pending document text. With no
// document attached this degenerates to the trimmed input.
func CombineInput(input, docText string) string {
	return strings.TrimSpace(strings.TrimSpace(input) + "\n\n" + docText)
}

func RoleForSender(s domain.Sender) string {
	if s == domain.SenderAssistant {
		return RoleModel
	}
	return RoleUser
}

func SenderForRole(role string) domain.Sender {
	if role == RoleModel {
		return domain.SenderAssistant
	}
	return domain.SenderUser
}
