package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"civicreports/internal/config"
	"civicreports/internal/duplicate"
	"civicreports/internal/engine"
	"civicreports/internal/repository"
	"civicreports/internal/scanner"
	"civicreports/internal/server"
	"civicreports/internal/service"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Storage: Postgres when configured, in-memory otherwise
	var (
		reportStore     repository.ReportStore
		validationStore repository.ValidationStore
		historyStore    repository.HistoryStore
		moderatorStore  repository.ModeratorStore
	)
	if cfg.Database.URL != "" {
		db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		// Run migrations
		repository.MigrateDB(db, logger)

		reportStore = repository.NewReportStore(db, logger)
		validationStore = repository.NewValidationStore(db, logger)
		historyStore = repository.NewHistoryStore(db, logger)
		moderatorStore = repository.NewModeratorStore(db, logger)
	} else {
		logger.Warn("No database configured, using in-memory stores; state will not survive a restart")
		memory := repository.NewMemoryStore()
		reportStore = memory
		validationStore = memory
		historyStore = memory
		moderatorStore = memory
	}

	// Duplicate detector with its candidate cache
	detector, err := duplicate.NewDetector(cfg.DetectorConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize duplicate detector", zap.Error(err))
	}

	// Validation engine
	eng := engine.New(reportStore, validationStore, historyStore, moderatorStore, detector, cfg.EngineConfig(), logger)

	// Moderator auth
	jwtSecret := []byte(cfg.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		logger.Fatal("auth.jwt_secret must be set")
	}
	authService := service.NewAuthService(moderatorStore, jwtSecret, cfg.TokenTTL(), logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the periodic duplicate scanner in a goroutine (if enabled)
	if cfg.Duplicates.ScanEnabled {
		interval := cfg.Duplicates.ScanIntervalSeconds
		if interval <= 0 {
			interval = 300
		}
		sc := scanner.NewScanner(eng, reportStore, logger, interval)
		go sc.Run(ctx)
	}

	// Initialize and run the server
	log := logrus.New()
	srv := server.NewServer(eng, authService, jwtSecret, log, logger)
	srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
