package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "partnernet-backend/internal/api/http"
	"partnernet-backend/internal/chat"
	"partnernet-backend/internal/config"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository/postgres"
	"partnernet-backend/internal/security"
	"partnernet-backend/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PartnerNet Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize chat client and modal-state signing
	chatClient := chat.NewClient(cfg.Chat.APIBaseURL, cfg.Chat.BotToken)
	stateTokens := security.NewStateTokenManager(
		cfg.Chat.StateSecret,
		time.Duration(cfg.Chat.StateTTLMinutes)*time.Minute,
	)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	dispatcher := service.NewNotificationDispatcher(
		store.RegistrationRepository,
		emailSvc,
		chatClient,
		cfg.Chat.OpsChannel,
	)
	provisioner := service.NewProvisionService(
		store.PartnerAccountRepository,
		cfg.Provision.PageGeneratorURL,
	)
	approvalSvc := service.NewApprovalService(
		store.RegistrationRepository,
		dispatcher,
		provisioner,
	)
	queueProcessor := service.NewQueueProcessor(
		store.QueueRepository,
		approvalSvc,
		chatClient,
	)

	// Initialize HTTP handlers
	interactionHandler := httpapi.NewInteractionHandler(
		approvalSvc,
		queueProcessor,
		chatClient,
		stateTokens,
		cfg.Chat.SigningSecret,
		cfg.Provision.DefaultRejectText,
	)

	router := mux.NewRouter()
	httpapi.RegisterInteractionRoutes(router, interactionHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
