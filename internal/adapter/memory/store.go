package memory

import (
	"sync"

	"github.com/google/uuid"

	"docchat-assistant/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	messages []domain.Message
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *Store) Replace(id uuid.UUID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Text = text
			return true
		}
	}
	return false
}

func (s *Store) Snapshot() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages...)
}
