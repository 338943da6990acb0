package domain

import "github.com/google/uuid"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one utterance in the conversation. ID and Sender are fixed at
// creation; the Text of an assistant message is rewritten exactly once,
// when its turn resolves.
type Message struct {
	ID     uuid.UUID
	Sender Sender
	Text   string
}

func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:     uuid.New(),
		Sender: sender,
		Text:   text,
	}
}
