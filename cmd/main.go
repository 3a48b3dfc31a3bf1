package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/config"
	"tournament-arena/internal/database"
	"tournament-arena/internal/events"
	"tournament-arena/internal/handlers"
	"tournament-arena/internal/jobs"
	"tournament-arena/internal/logging"
	"tournament-arena/internal/payment"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Connect to database
	db, err := database.Connect(cfg.Database, cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Event bus
	var publisher events.Publisher = events.NewNoopPublisher()
	if cfg.Events.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.Events.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Close()
		publisher = nc
	} else {
		log.Info("NATS_URL not set, domain events are discarded")
	}

	repo := repository.NewRepository(db)

	// Initialize services
	gateway := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.RequestTimeout)
	userService := services.NewUserService(repo, cfg.Auth.BootstrapAdminUIDs)
	tournamentService := services.NewTournamentService(repo)
	ledger := services.NewLedgerService(repo, publisher)
	paymentService := services.NewPaymentService(repo, gateway, publisher, services.PaymentSettings{
		MinDeposit:  cfg.Payment.MinDeposit,
		RedirectURL: cfg.Payment.RedirectURL,
		CancelURL:   cfg.Payment.CancelURL,
		WebhookURL:  cfg.Payment.WebhookURL,
	})
	adminService := services.NewAdminService(repo)
	alertService := services.NewAlertService(repo)

	verifier := auth.NewTokenVerifier(cfg.Auth.IdentitySecret, cfg.Auth.Issuer, cfg.Auth.Audience)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:       handlers.NewAuthHandler(userService),
		User:       handlers.NewUserHandler(userService, tournamentService),
		Tournament: handlers.NewTournamentHandler(tournamentService, ledger),
		Wallet:     handlers.NewWalletHandler(paymentService, ledger),
		Webhook:    handlers.NewWebhookHandler(paymentService, cfg.Payment.WebhookSecret, cfg.Payment.WebhookHeader),
		Alert:      handlers.NewAlertHandler(alertService),
		Admin:      handlers.NewAdminHandler(adminService, tournamentService, alertService, ledger),
	}, verifier, cfg.Server.AllowedOrigins)

	// Start pending deposit sweeper
	sweeper := jobs.NewDepositSweeper(repo, publisher, cfg.Jobs.PendingDepositTTL, cfg.Jobs.PendingSweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start deposit sweeper: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := sweeper.Stop(); err != nil {
		log.WithError(err).Warn("Deposit sweeper did not stop cleanly")
	}

	log.Info("Server exited")
}
