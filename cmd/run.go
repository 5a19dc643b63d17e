package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"ddj/application"
	"ddj/config"
	"ddj/database"
	"ddj/domain/entities"
	"ddj/domain/interfaces"
	"ddj/domain/services"
	"ddj/infrastructure"
	"ddj/ratelimit"
	"ddj/repository"
	"ddj/web"
)

const (
	redeemAttemptLimit  = 5
	redeemAttemptWindow = 60 * time.Second
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Starting draw engine...")

	// Database
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Event publishing. Without NATS_SERVERS events are dropped.
	var natsClient *infrastructure.NATSClient
	var newPublisher func() interfaces.TransactionalEventPublisher
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()
		if err := natsClient.EnsureEventStream(); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient)
		newPublisher = func() interfaces.TransactionalEventPublisher {
			return infrastructure.NewTransactionalPublisher(natsPublisher)
		}
	} else {
		log.Warn("NATS_SERVERS not set, domain events will not be published")
		newPublisher = func() interfaces.TransactionalEventPublisher {
			return infrastructure.NewNoopEventPublisher()
		}
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, newPublisher)

	// Domain services
	clock := services.NewRoundClock(entities.RoundParams{
		RoundSeconds: cfg.RoundSeconds,
		CloseBetsAt:  cfg.CloseBetsAt,
		AnchorMs:     cfg.AnchorMs,
	})
	draw := services.NewDrawService(cfg.SecretSeed)
	players := services.NewPlayerService(uowFactory, cfg.SignupBonusDOS)
	betting := services.NewBettingService(uowFactory, clock)
	settlement := services.NewSettlementService(uowFactory, clock, draw)
	redemption := services.NewRedemptionService(uowFactory, cfg.SecretSeed)
	giftCodes := services.NewGiftCodeService(uowFactory, cfg.SecretSeed)
	bank := services.NewBankService(uowFactory)

	limiter := ratelimit.NewLimiter(redeemAttemptLimit, redeemAttemptWindow)

	// Background settlement
	worker := application.NewSettlementWorker(uowFactory, clock, settlement, limiter)
	stopWorker, err := worker.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start settlement worker: %w", err)
	}
	defer stopWorker()

	// HTTP facade
	server := web.NewServer(cfg, clock, players, betting, settlement, redemption, giftCodes, bank, limiter)

	log.WithField("environment", cfg.Environment).Info("Draw engine is running")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("application error: %w", err)
	}

	log.Info("Shutdown completed")
	return nil
}
