package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"docchat-assistant/internal/usecase/chat"
)

// Wire schema of the generateContent endpoint.
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type Client struct {
	baseURL   string
	model     string
	apiKey    string
	maxTokens int
	http      *http.Client
	log       zerolog.Logger
}

// NewClient builds a Gemini completion client. The http.Client carries no
// timeout on purpose: turn duration is bounded only by the endpoint.
func NewClient(baseURL, model, apiKey string, maxTokens int, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		model:     model,
		apiKey:    apiKey,
		maxTokens: maxTokens,
		http:      &http.Client{},
		log:       log,
	}
}

// Send performs one generateContent call. The answer is expected at
// candidates[0].content.parts[0].text; a reply without it (error bodies
// included) comes back as Malformed with an indented dump of the raw body,
// and anything that never yielded parseable JSON comes back as Failed.
func (c *Client) Send(ctx context.Context, entries []chat.Entry) chat.Result {
	body, err := json.Marshal(c.buildRequest(entries))
	if err != nil {
		return chat.Result{Kind: chat.Failed, Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return chat.Result{Kind: chat.Failed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return chat.Result{Kind: chat.Failed, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return chat.Result{Kind: chat.Failed, Err: err}
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return chat.Result{Kind: chat.Failed, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if text, ok := firstCandidateText(parsed); ok {
		return chat.Result{Kind: chat.Answered, Text: text}
	}

	c.log.Warn().Int("status", resp.StatusCode).Msg("gemini response carries no answer text")
	return chat.Result{Kind: chat.Malformed, Text: prettyDump(raw)}
}

func (c *Client) buildRequest(entries []chat.Entry) generateRequest {
	contents := make([]content, 0, len(entries))
	for _, e := range entries {
		contents = append(contents, content{
			Role:  e.Role,
			Parts: []part{{Text: e.Text}},
		})
	}

	req := generateRequest{Contents: contents}
	if c.maxTokens > 0 {
		req.GenerationConfig = &generationConfig{MaxOutputTokens: c.maxTokens}
	}
	return req
}

func firstCandidateText(resp generateResponse) (string, bool) {
	if len(resp.Candidates) == 0 {
		return "", false
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}

func prettyDump(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
