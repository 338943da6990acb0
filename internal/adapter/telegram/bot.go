package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"docchat-assistant/internal/config"
	"docchat-assistant/internal/usecase/chat"
)

// Extractor turns an uploaded document into one plain-text blob.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// SessionFactory creates the conversation session for a chat the bot has
// not seen yet.
type SessionFactory func() *chat.Session

// Bot is the presentation surface: it feeds user text and uploaded
// documents into the per-chat session and renders whatever the session
// resolves. Each Telegram chat gets its own session; the session itself
// stays single-conversation.
type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        config.Config
	log        zerolog.Logger
	newSession SessionFactory
	extract    Extractor

	mu       sync.Mutex
	sessions map[int64]*chat.Session
}

func NewBot(cfg config.Config, newSession SessionFactory, extract Extractor, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:        api,
		cfg:        cfg,
		log:        log,
		newSession: newSession,
		extract:    extract,
		sessions:   make(map[int64]*chat.Session),
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := update.Message
			if msg.From == nil {
				continue
			}
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !isAllowedUser(msg.From.ID, b.cfg) {
		deny := tgbotapi.NewMessage(msg.Chat.ID, "access denied")
		deny.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(deny); err != nil {
			b.log.Error().Err(err).Msg("failed to send deny message")
		}
		return
	}

	session := b.session(msg.Chat.ID)

	if msg.Document != nil {
		b.handleDocument(ctx, session, msg)
		return
	}

	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatTyping)

	resolved, err := session.Send(ctx, msg.Text)
	if err != nil {
		// Both rejection cases are deliberately silent towards the user.
		switch {
		case errors.Is(err, chat.ErrEmptyInput):
			b.log.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring empty message")
		case errors.Is(err, chat.ErrBusy):
			b.log.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring message, turn in flight")
		default:
			b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send failed")
		}
		return
	}

	if shouldSendAsFile(resolved) {
		if err := b.sendAsFile(msg.Chat.ID, msg.MessageID, resolved); err != nil {
			b.log.Error().Err(err).Msg("failed to send file")
			b.sendText(msg.Chat.ID, msg.MessageID, "could not send file, here is the text")
			b.sendText(msg.Chat.ID, msg.MessageID, resolved)
		}
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, resolved)
}

func (b *Bot) session(chatID int64) *chat.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = b.newSession()
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	const chunkSize = 2048

	chunks := splitText(text, chunkSize)
	for idx, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if idx == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error().Err(err).Msg("failed to send reply")
		}
	}
}

func (b *Bot) sendChatAction(chatID int64, action string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		b.log.Error().Err(err).Msg("failed to send chat action")
	}
}

func (b *Bot) sendAsFile(chatID int64, replyTo int, content string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "response.md",
		Bytes: []byte(content),
	})
	doc.ReplyToMessageID = replyTo

	_, err := b.api.Send(doc)
	return err
}

func shouldSendAsFile(text string) bool {
	const chunkSize = 2048
	return len([]rune(text)) > chunkSize
}

func isAllowedUser(userID int64, cfg config.Config) bool {
	for _, id := range cfg.AdminUserIDs {
		if id == userID {
			return true
		}
	}

	if len(cfg.AllowedUserIDs) == 0 {
		return true
	}

	for _, id := range cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
