package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Extractor calls the external extraction service that turns a PDF into one
// plain-text blob, all pages joined by newlines in page order.
type Extractor struct {
	serviceURL string
	client     *http.Client
	log        zerolog.Logger
}

func NewExtractor(serviceURL string, log zerolog.Logger) *Extractor {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &Extractor{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

type extractResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// Extract posts the raw document bytes and returns the extracted text.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	endpoint := e.serviceURL + "/extract?name=" + url.QueryEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("extraction failed: %s", result.Error)
	}

	e.log.Debug().Str("file", filename).Int("pages", result.Pages).Msg("document extracted")
	return result.Text, nil
}
