package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/haulstack/supportbot/internal/api"
	"github.com/haulstack/supportbot/internal/assistant"
	"github.com/haulstack/supportbot/internal/bot"
	"github.com/haulstack/supportbot/internal/config"
	"github.com/haulstack/supportbot/internal/conversation"
	"github.com/haulstack/supportbot/internal/events"
	"github.com/haulstack/supportbot/internal/health"
	"github.com/haulstack/supportbot/internal/knowledge"
	"github.com/haulstack/supportbot/internal/llm"
	"github.com/haulstack/supportbot/internal/quota"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path (falls back to SUPPORTBOT_CONFIG, then built-in defaults)")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	if *showVersion {
		printVersion()
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting supportbot",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("built", date))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := knowledge.NewEngine(knowledge.Corpus(), cfg.Knowledge)
	if err != nil {
		logger.Fatal("Failed to initialize knowledge engine", zap.Error(err))
	}

	tracker, err := quota.NewTracker(cfg.Quota)
	if err != nil {
		logger.Fatal("Failed to initialize quota tracker", zap.Error(err))
	}

	memory := conversation.NewStore(cfg.Memory.MaxEntries)

	client := llm.NewClient(cfg.OpenAI)
	if !client.Configured() {
		logger.Warn("No OpenAI API key configured; answer generation will fail until one is provided")
	}

	publisher, kafkaPublisher, err := buildPublisher(cfg.Kafka)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer func() { _ = publisher.Close() }()

	service := assistant.NewService(engine, memory, tracker, client, logger)

	handler := bot.NewHandler(service, publisher, logger, bot.Config{
		MaxConversations:  cfg.Memory.MaxConversations,
		MaxTrackedReplies: cfg.Cleanup.MaxTrackedReplies,
		CounterRetention:  cfg.Cleanup.CounterRetention,
	})
	handler.StartCleanup(ctx, cfg.Cleanup.Interval)

	checker := buildHealthChecker(engine, client, kafkaPublisher)

	gateway := api.NewGateway(cfg.API, handler, checker, logger)
	go func() {
		if err := gateway.Start(); err != nil {
			logger.Fatal("API gateway failed", zap.Error(err))
		}
	}()

	waitForShutdown(logger, cancel, gateway)
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// buildPublisher returns the publisher to wire into the bot plus the
// concrete Kafka publisher when one was built, so a ping check can be
// registered against it.
func buildPublisher(cfg events.KafkaConfig) (events.Publisher, *events.KafkaPublisher, error) {
	if !cfg.Enabled {
		return events.NopPublisher{}, nil, nil
	}

	publisher, err := events.NewKafkaPublisher(cfg)
	if err != nil {
		return nil, nil, err
	}
	return publisher, publisher, nil
}

func buildHealthChecker(engine *knowledge.Engine, client *llm.Client, kafkaPublisher *events.KafkaPublisher) *health.Checker {
	checker := health.NewChecker()

	checker.Register(health.NewCheck("knowledge", func(context.Context) health.Result {
		stats := engine.Stats()
		if stats.Documents == 0 {
			return health.Result{Status: health.StatusUnhealthy, Message: "knowledge base is empty"}
		}
		return health.Result{
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d documents loaded", stats.Documents),
		}
	}))

	checker.Register(health.NewCheck("generator", func(context.Context) health.Result {
		if !client.Configured() {
			return health.Result{Status: health.StatusDegraded, Message: "api key not configured"}
		}
		return health.Result{Status: health.StatusHealthy}
	}))

	if kafkaPublisher != nil {
		checker.Register(health.NewPingCheck("events", kafkaPublisher))
	}

	return checker
}

func waitForShutdown(logger *zap.Logger, cancel context.CancelFunc, gateway *api.Gateway) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown error", zap.Error(err))
	}

	cancel()
	logger.Info("supportbot stopped")
}

func printHelp() {
	fmt.Printf(`supportbot - HaulStack support assistant service

Usage:
  supportbot [flags]

Flags:
  -config string
        Configuration file path (falls back to SUPPORTBOT_CONFIG, then built-in defaults)
  -version
        Show version information
  -help
        Show this help message

Examples:
  supportbot                                  # Start with built-in defaults
  supportbot -config config/production.yaml   # Start with a config file
  supportbot -version                         # Show version

For more information, visit: https://github.com/haulstack/supportbot
`)
}

func printVersion() {
	fmt.Printf("supportbot version %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Built: %s\n", date)
}
