package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"docchat-assistant/internal/adapter/gemini"
	"docchat-assistant/internal/adapter/memory"
	"docchat-assistant/internal/adapter/openai"
	"docchat-assistant/internal/adapter/pdf"
	"docchat-assistant/internal/adapter/telegram"
	"docchat-assistant/internal/config"
	"docchat-assistant/internal/usecase/chat"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(".env")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	var client chat.Client
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client = openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxOutputTokens,
			logger.With().Str("component", "openai").Logger())
	default:
		client = gemini.NewClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiKey, cfg.MaxOutputTokens,
			logger.With().Str("component", "gemini").Logger())
	}

	extractor := pdf.NewExtractor(cfg.PDFServiceURL,
		logger.With().Str("component", "pdf").Logger())

	newSession := func() *chat.Session {
		return chat.NewSession(memory.NewStore(), client, cfg,
			logger.With().Str("component", "session").Logger())
	}

	bot, err := telegram.NewBot(cfg, newSession, extractor,
		logger.With().Str("component", "telegram").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init telegram bot")
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info().Err(err).Msg("shutdown")
			return
		}
		logger.Fatal().Err(err).Msg("bot stopped with error")
	}
}
