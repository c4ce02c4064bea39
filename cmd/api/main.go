package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/drivelane/showroom-ai/internal/api/router"
	appconfig "github.com/drivelane/showroom-ai/internal/config"
	"github.com/drivelane/showroom-ai/internal/conversation"
	"github.com/drivelane/showroom-ai/internal/knowledge"
	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/internal/notify"
	"github.com/drivelane/showroom-ai/internal/observability/metrics"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting showroom-ai API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	// Database
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		logger.Warn("DATABASE_URL not set, leads are held in memory and knowledge retrieval is disabled")
	}

	// LLM provider
	var llm conversation.LLMClient
	var embedder knowledge.Embedder
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llm = gemini
		// Embeddings still come from OpenAI; the vector schema is sized for
		// its embedding models.
		if cfg.OpenAIAPIKey != "" {
			openaiClient, err := conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbeddingModel)
			if err != nil {
				logger.Error("failed to create openai embedding client", "error", err)
				os.Exit(1)
			}
			embedder = openaiClient
		}
	default:
		openaiClient, err := conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbeddingModel)
		if err != nil {
			logger.Error("failed to create openai client", "error", err)
			os.Exit(1)
		}
		llm = openaiClient
		embedder = openaiClient
	}
	llm = conversation.NewTimeoutClient(llm, cfg.LLMTimeout)

	// Session store
	var sessions conversation.SessionStore
	if cfg.SessionStore == "redis" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
		sessions = conversation.NewRedisSessionStore(redisClient)
	} else {
		logger.Warn("using in-memory session store, sessions do not survive restarts")
		sessions = conversation.NewMemorySessionStore()
	}

	// Leads repository
	var repo leads.Repository
	if pool != nil {
		repo = leads.NewPostgresRepository(pool)
	} else {
		repo = leads.NewInMemoryRepository()
	}

	// Notification
	var notifier conversation.LeadNotifier
	if cfg.NotifyRecipient != "" {
		sender := buildEmailSender(ctx, cfg, logger)
		notifier = notify.NewService(sender, cfg.NotifyRecipient, logger)
	} else {
		logger.Warn("NOTIFY_RECIPIENT not set, qualified lead alerts are disabled")
	}

	convMetrics := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)

	// Engine
	engineOpts := []conversation.EngineOption{
		conversation.WithLeadStore(repo),
		conversation.WithMetrics(convMetrics),
		conversation.WithChatModel(chatModel(cfg)),
		conversation.WithTopK(cfg.RetrievalTopK),
		conversation.WithThreshold(cfg.QualifyThreshold),
	}
	if notifier != nil {
		engineOpts = append(engineOpts, conversation.WithNotifier(notifier))
	}

	var knowledgeHandler *knowledge.Handler
	if pool != nil && embedder != nil {
		retriever := knowledge.NewPgvectorRetriever(pool, embedder, cfg.RetrievalProbes, logger)
		engineOpts = append(engineOpts, conversation.WithRetriever(retriever))
		knowledgeHandler = knowledge.NewHandler(knowledge.NewIngestor(pool, embedder, logger), logger)
	} else {
		logger.Warn("knowledge retrieval disabled, replies will not use dealership context")
	}

	extractor := conversation.NewFieldExtractor(llm, chatModel(cfg), logger)
	engine := conversation.NewEngine(llm, extractor, sessions, logger, engineOpts...)

	routerCfg := &router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(engine, logger),
		KnowledgeHandler:    knowledgeHandler,
		LeadsHandler:        leads.NewHandler(repo, logger),
		MetricsHandler:      promhttp.Handler(),
		KnowledgeToken:      cfg.KnowledgeToken,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func chatModel(cfg *appconfig.Config) string {
	if cfg.LLMProvider == "gemini" {
		return cfg.GeminiModel
	}
	return cfg.OpenAIChatModel
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid not configured, falling back to stub email sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub email sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
