package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"partnernet-backend/internal/chat"
	"partnernet-backend/internal/config"
	"partnernet-backend/internal/jobs"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository/postgres"
	"partnernet-backend/internal/scheduler"
	"partnernet-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'drain-queue')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PartnerNet Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	chatClient := chat.NewClient(cfg.Chat.APIBaseURL, cfg.Chat.BotToken)
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

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(queueProcessor, cfg)

	// Check if running a single job
	if *runOnce != "" {
		runJobOnce(jobRunner, *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "drain-queue":
		processed, remaining, err := jobRunner.DrainOnce(context.Background())
		if err != nil {
			logger.Error("Queue drain failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("processed: %d\nremaining: %d\n", processed, remaining)
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - drain-queue\n")
		os.Exit(1)
	}
}
