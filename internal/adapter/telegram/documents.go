package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docchat-assistant/internal/usecase/chat"
)

// handleDocument downloads an uploaded PDF, runs it through the extractor
// and attaches the text to the chat's session. The attached text then rides
// along with every following turn until a new upload replaces it.
func (b *Bot) handleDocument(ctx context.Context, session *chat.Session, msg *tgbotapi.Message) {
	doc := msg.Document
	if !isPDF(doc) {
		b.sendText(msg.Chat.ID, msg.MessageID, "only PDF documents are supported")
		return
	}

	b.sendChatAction(msg.Chat.ID, tgbotapi.ChatUploadDocument)

	data, err := b.fetchFileBytes(doc.FileID)
	if err != nil {
		b.log.Error().Err(err).Str("file", doc.FileName).Msg("could not download document")
		b.sendText(msg.Chat.ID, msg.MessageID, "could not download that document, try again")
		return
	}

	text, err := b.extract.Extract(ctx, data, doc.FileName)
	if err != nil {
		b.log.Error().Err(err).Str("file", doc.FileName).Msg("could not extract document text")
		b.sendText(msg.Chat.ID, msg.MessageID, "could not read that document, try again")
		return
	}

	session.AttachDocument(doc.FileName, text)
	b.sendText(msg.Chat.ID, msg.MessageID,
		fmt.Sprintf("Attached %s, I will use it as context for this chat.", doc.FileName))
}

func isPDF(doc *tgbotapi.Document) bool {
	if strings.EqualFold(doc.MimeType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.FileName), ".pdf")
}

func (b *Bot) fetchFileBytes(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", b.api.Token, file.FilePath)

	resp, err := http.Get(url) // #nosec G107
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
