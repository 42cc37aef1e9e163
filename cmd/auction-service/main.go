package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/openbay/auction-service/internal/app/background"
	"github.com/openbay/auction-service/internal/config"
	httpdelivery "github.com/openbay/auction-service/internal/delivery/http"
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/broadcast"
	"github.com/openbay/auction-service/internal/infrastructure/gateway"
	publisher "github.com/openbay/auction-service/internal/infrastructure/kafka"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/infrastructure/metrics"
	"github.com/openbay/auction-service/internal/infrastructure/migrate"
	"github.com/openbay/auction-service/internal/infrastructure/postgres"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/repository"
	"github.com/openbay/auction-service/internal/usecase/bidding"
	"github.com/openbay/auction-service/internal/usecase/payment"
	"github.com/openbay/auction-service/internal/usecase/settlement"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.Setup(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.AuctionDB.MigrationsPath != "" {
		if err := migrate.Run(db, cfg.AuctionDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init repositories
	auctionRepo := repository.NewDefaultAuctionRepository(db)
	bidRepo := repository.NewDefaultBidRepository(db)
	orderRepo := repository.NewDefaultOrderRepository(db)
	paymentRepo := repository.NewDefaultPaymentRepository(db)

	// Init kafka audit publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	auditPublisher := publisher.NewDefaultKafkaPublisher(brokers)
	defer auditPublisher.Close()

	// Init metrics
	auctionMetrics := metrics.NewAuctionMetrics()

	// Init broadcast hub, with the Redis bridge when clustering is configured
	hub := broadcast.NewHub(auctionMetrics)
	go hub.Run()

	var broadcaster domain.Broadcaster = hub
	if cfg.Redis.Addr != "" {
		bridge, err := broadcast.NewRedisBridge(hub, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("failed to init redis bridge: %v", err)
		}
		go bridge.Listen(context.Background())
		broadcaster = bridge
	}

	// Init payment gateway client
	gatewayClient, err := gateway.NewClient(cfg.PaymentGateway)
	if err != nil {
		log.Fatalf("failed to init payment gateway client: %v", err)
	}

	// Init usecases
	biddingUsecase := bidding.NewUsecase(
		auctionRepo,
		bidRepo,
		broadcaster,
		auditPublisher,
		auctionMetrics,
		bidding.Policy{AllowSelfOutbid: cfg.Bidding.AllowSelfOutbid},
	)
	settlementUsecase := settlement.NewUsecase(
		auctionRepo,
		bidRepo,
		orderRepo,
		broadcaster,
		auditPublisher,
		auctionMetrics,
	)
	paymentUsecase := payment.NewUsecase(
		orderRepo,
		paymentRepo,
		gatewayClient,
		broadcaster,
		auditPublisher,
		auctionMetrics,
		cfg.PaymentGateway.Currency,
	)

	// Start background settlement sweep
	backgroundTasks := background.NewBackgroundTasks(settlementUsecase, cfg.Scheduler.SweepInterval)
	backgroundTasks.StartAll(context.Background())

	// Start HTTP server
	router := httpdelivery.SetupRouter(biddingUsecase, settlementUsecase, paymentUsecase, hub)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	logger.Info("auction service listening", map[string]any{"addr": addr, "env": cfg.Env})
	if err := router.Run(addr); err != nil {
		log.Fatalf("http server stopped: %v", err)
	}
}
