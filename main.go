package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/malaysia-ai/concierge-server/internal/concierge/graph"
	"github.com/malaysia-ai/concierge-server/internal/concierge/images"
	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/repo"
	"github.com/malaysia-ai/concierge-server/internal/concierge/vision"
	"github.com/malaysia-ai/concierge-server/internal/core"
	"github.com/malaysia-ai/concierge-server/internal/server"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
	pkgredis "github.com/malaysia-ai/concierge-server/pkg/redis"
)

// AppConfig defines all configurable parameters for the concierge server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config
	HTTP  server.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Concierge configs
	Response     model.ResponseModelConfig
	Vision       model.VisionModelConfig
	Prompt       model.PersonaPromptConfig
	Conversation model.ConversationConfig
	Images       images.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(envCfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis successfully")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", envCfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	concierge, err := graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ResponseModel:    envCfg.Response,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build response graph")
	}

	imageClient := images.NewClient(envCfg.Images)

	analyzer := vision.NewAnalyzer(
		concierge.ChatModels.Client,
		envCfg.Vision,
		envCfg.Response,
		envCfg.Prompt,
		envCfg.Conversation,
	)

	httpServer := server.New(
		envCfg.HTTP,
		env,
		concierge,
		imageClient,
		analyzer,
		envCfg.Response,
		envCfg.Prompt,
	)

	if err := httpServer.Run(ctx); err != nil {
		logx.Fatal().Err(err).Msg("HTTP server terminated")
	}
	logx.Info().Msg("Server shut down cleanly")
}
