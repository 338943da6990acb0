package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	TelegramToken   string
	Provider        string
	GeminiKey       string
	GeminiModel     string
	GeminiBaseURL   string
	OpenAIKey       string
	OpenAIModel     string
	PDFServiceURL   string
	AdminUserIDs    []int64
	AllowedUserIDs  []int64
	PlaceholderText string
	MaxOutputTokens int
}

func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("no dotenv file loaded")
	}

	cfg := Config{
		Provider:        strings.ToLower(getenvDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiModel:     getenvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:   getenvDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIModel:     getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PDFServiceURL:   getenvDefault("PDF_SERVICE_URL", "http://localhost:8081"),
		PlaceholderText: getenvDefault("PLACEHOLDER_TEXT", "Thinking..."),
		MaxOutputTokens: getenvIntDefault("MAX_OUTPUT_TOKENS", 4096),
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken == "" {
		return cfg, errors.New("telegram token is required")
	}

	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return cfg, errors.New("gemini api key is required")
		}
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return cfg, errors.New("openai api key is required")
		}
	default:
		return cfg, errors.New("unknown llm provider: " + cfg.Provider)
	}

	cfg.AdminUserIDs = parseIDs(os.Getenv("ADMIN_USER_IDS"))
	cfg.AllowedUserIDs = parseIDs(os.Getenv("ALLOWED_TELEGRAM_USER_IDS"))

	return cfg, nil
}

func parseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Warn().Str("value", p).Err(err).Msg("skipping user id")
			continue
		}
		ids = append(ids, v)
	}
	return ids
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return n
}
