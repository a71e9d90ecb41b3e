package main

import (
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/codetutor/internal/bootstrap"
	"github.com/codetutor/internal/config"
	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/github"
	"github.com/codetutor/internal/http"
	"github.com/codetutor/internal/logger"
	"github.com/codetutor/internal/password"
	"github.com/codetutor/internal/session"
	"github.com/codetutor/internal/token"
)

func main() {
	// Load .env file if it exists (optional, won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg.Environment)

	slog.Info("GitHub login", "enabled", cfg.GitHub.Enabled())
	if cfg.GitHub.Enabled() {
		clientID := cfg.GitHub.ClientID
		if len(clientID) > 8 {
			clientID = clientID[:8]
		}
		slog.Info("GitHub OAuth configured", "clientIDPrefix", clientID)
	}

	// Initialize database
	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Seed bootstrap admin accounts if configured
	if cfg.SeedFile != "" {
		hasher := password.NewHasher(cfg.BcryptCost)
		if err := bootstrap.Apply(cfg.SeedFile, database, hasher, slog.Default()); err != nil {
			log.Fatalf("Failed to apply seed file: %v", err)
		}
	}

	// In-memory stores for revocations and OAuth sessions. Process-local:
	// multi-instance deployments need sticky routing or external stores.
	revocations := token.NewMemoryRevocationStore()
	sessions := session.NewMemoryStore()

	tokens, err := token.NewService(token.Options{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Revocations:   revocations,
	})
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	githubFlow := github.NewFlow(cfg.GitHub, sessions, database, slog.Default())

	// Periodically sweep revocations whose tokens have expired anyway, and
	// abandoned OAuth sessions
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 10m", func() {
		now := time.Now()
		removedRevocations := revocations.Prune(now)
		removedSessions := sessions.Prune(now)
		slog.Debug("pruned expired auth state",
			"revocations", removedRevocations, "sessions", removedSessions)
	}); err != nil {
		log.Fatalf("Failed to schedule pruning job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create HTTP server
	server := http.NewServer(cfg, database, tokens, githubFlow)

	// Start server
	slog.Info("starting server", "address", cfg.ServerAddress, "environment", cfg.Environment)
	if err := server.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
