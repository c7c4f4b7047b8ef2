package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"medical-consult-assistant/internal/agent"
	"medical-consult-assistant/internal/api/router"
	"medical-consult-assistant/internal/config"
	"medical-consult-assistant/internal/consultation"
	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/observability/metrics"
	"medical-consult-assistant/internal/platform/telegram"
	"medical-consult-assistant/internal/prompt"
	"medical-consult-assistant/internal/report"
	"medical-consult-assistant/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medical consultation assistant",
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	assistantMetrics := metrics.NewAssistantMetrics(reg)

	// Generation backend
	ctx := context.Background()
	backend, closeBackend, err := newGenerator(ctx, cfg)
	if err != nil {
		logger.Error("failed to init generation backend", "error", err)
		os.Exit(1)
	}
	defer closeBackend()
	generator := agent.NewRetryingGenerator(string(cfg.LLMProvider), backend, agent.RetryConfig{
		MaxAttempts: cfg.GenerationMaxRetries,
		BaseDelay:   cfg.GenerationBaseDelay,
		MaxDelay:    cfg.GenerationMaxDelay,
		RPS:         cfg.GenerationRPS,
		Burst:       cfg.GenerationBurst,
	}, agent.WithLogger(logger), agent.WithMetrics(assistantMetrics))

	templates, err := prompt.LoadTemplates(cfg.PromptTemplatesPath)
	if err != nil {
		logger.Error("failed to load prompt templates", "path", cfg.PromptTemplatesPath, "error", err)
		os.Exit(1)
	}

	deps := consultation.Deps{
		Repo:      consultation.NewRepository(),
		Scorer:    emotion.NewScorer(emotion.NewVaderAnalyzer()),
		Composer:  prompt.NewComposer(templates),
		Generator: generator,
		Metrics:   assistantMetrics,
		Logger:    logger,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, summaries will not be cached", "addr", cfg.RedisAddr, "error", err)
		} else {
			deps.Cache = consultation.NewRedisSummaryCache(rdb, cfg.SummaryCacheTTL)
			logger.Info("summary cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SummaryCacheTTL)
		}
		cancel()
	}

	if cfg.NotificationsEnabled() {
		tgClient, err := telegram.NewClient(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("telegram unavailable, doctor notifications disabled", "error", err)
		} else {
			deps.Reports = report.NewService(tgClient, cfg.DoctorChatID, cfg.ReportFontPath, logger,
				report.WithDevanagariFont(cfg.ReportDevanagariFontPath))
		}
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set, doctor notifications disabled")
	}

	svc := consultation.NewService(deps)
	r := router.New(&router.Config{
		Logger:              logger,
		ConsultationHandler: consultation.NewHandler(svc, logger),
		MetricsHandler:      metrics.Handler(reg),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Rate-limit backoff can hold a request for over a minute.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func newGenerator(ctx context.Context, cfg *config.Config) (agent.Generator, func(), error) {
	noop := func() {}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return agent.NewDisabled(), noop, nil
		}
		client, err := agent.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return client, func() { _ = client.Close() }, nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return agent.NewDisabled(), noop, nil
		}
		return agent.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), noop, nil
	default:
		return agent.NewDisabled(), noop, nil
	}
}
