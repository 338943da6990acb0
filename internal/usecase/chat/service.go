package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"docchat-assistant/internal/config"
	"docchat-assistant/internal/domain"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrBusy       = errors.New("turn already in flight")
)

const (
	// Shown when the endpoint replied but neither the answer nor a usable
	// raw dump could be produced.
	apologyText = "Sorry, I could not read a response from the model."
	// Shown when the request never produced a usable body.
	failureText = "Something went wrong while contacting the model, please try again."
)

// Session owns one conversation: the message history, the pending document
// text and the busy flag. All writes to the store go through Send, so the
// store sees a single writer.
type Session struct {
	store  domain.ConversationStore
	client Client
	cfg    config.Config
	log    zerolog.Logger

	mu      sync.Mutex
	busy    bool
	docText string
	docName string
}

func NewSession(store domain.ConversationStore, client Client, cfg config.Config, log zerolog.Logger) *Session {
	return &Session{
		store:  store,
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// Send runs one turn: append the user message and a placeholder assistant
// message, call the completion endpoint with the pre-turn history, then
// rewrite the placeholder with whatever the call resolved to. The resolved
// text is also returned so the surface can render it without re-reading the
// store. ErrEmptyInput and ErrBusy are the only errors; every completion
// failure resolves into visible message text instead.
func (s *Session) Send(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}
	if !s.begin() {
		return "", ErrBusy
	}
	defer s.end()

	history := s.store.Snapshot()
	docText := s.documentText()

	s.store.Append(domain.NewMessage(domain.SenderUser, input))
	placeholder := domain.NewMessage(domain.SenderAssistant, s.cfg.PlaceholderText)
	s.store.Append(placeholder)

	resolved := s.resolve(s.client.Send(ctx, BuildPayload(history, input, docText)))
	if !s.store.Replace(placeholder.ID, resolved) {
		// Should be unreachable while turns are serialized, but a miss is
		// not worth crashing the session over.
		s.log.Warn().
			Stringer("message_id", placeholder.ID).
			Msg("placeholder missing at resolution")
	}
	return resolved, nil
}

func (s *Session) resolve(res Result) string {
	switch res.Kind {
	case Answered:
		return res.Text
	case Malformed:
		s.log.Warn().Msg("completion response missing answer field, showing raw dump")
		if strings.TrimSpace(res.Text) == "" {
			return apologyText
		}
		return res.Text
	default:
		s.log.Error().Err(res.Err).Msg("completion request failed")
		return failureText
	}
}

// AttachDocument replaces the pending document text. It is never cleared:
// the document rides along with every following turn until the next upload
// replaces it.
func (s *Session) AttachDocument(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docName = name
	s.docText = text
}

// DocumentName returns the name of the currently attached document, empty
// if none was uploaded yet.
func (s *Session) DocumentName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docName
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Messages exposes a read-only snapshot for rendering.
func (s *Session) Messages() []domain.Message {
	return s.store.Snapshot()
}

func (s *Session) documentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docText
}

func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
