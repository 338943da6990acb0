package openai

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	openaiapi "github.com/sashabaranov/go-openai"

	"docchat-assistant/internal/usecase/chat"
)

// Client is the alternative completion provider, speaking the OpenAI chat
// completions API through the official-ish sdk. It honors the same
// three-way result contract as the gemini client.
type Client struct {
	api       *openaiapi.Client
	model     string
	maxTokens int
	log       zerolog.Logger
}

func NewClient(token, model string, maxTokens int, log zerolog.Logger) *Client {
	return &Client{
		api:       openaiapi.NewClient(token),
		model:     model,
		maxTokens: maxTokens,
		log:       log,
	}
}

func (c *Client) Send(ctx context.Context, entries []chat.Entry) chat.Result {
	resp, err := c.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxTokens,
		Stream:              false,
		Messages:            toAPIMessages(entries),
	})
	if err != nil {
		return chat.Result{Kind: chat.Failed, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.log.Warn().Str("id", resp.ID).Msg("openai response carries no answer text")
		dump, mErr := json.MarshalIndent(resp, "", "  ")
		if mErr != nil {
			return chat.Result{Kind: chat.Failed, Err: mErr}
		}
		return chat.Result{Kind: chat.Malformed, Text: string(dump)}
	}

	return chat.Result{Kind: chat.Answered, Text: resp.Choices[0].Message.Content}
}

func toAPIMessages(entries []chat.Entry) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(entries))
	for _, e := range entries {
		role := openaiapi.ChatMessageRoleUser
		if e.Role == chat.RoleModel {
			role = openaiapi.ChatMessageRoleAssistant
		}
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    role,
			Content: e.Text,
		})
	}
	return res
}
