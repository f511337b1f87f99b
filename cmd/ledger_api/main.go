package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/personal-finance-ledger/internal/api_gateway"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/data"
	"github.com/personal-finance-ledger/internal/ledger"
	"github.com/personal-finance-ledger/internal/logger"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Ledger API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"store", cfg.Store.Driver,
	)

	store, closeStore, err := data.OpenEntryStore(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open entry store", "error", err)
		os.Exit(1)
	}

	engine := ledger.NewEngine(store, ledger.Options{
		FallbackCategory:   cfg.Ledger.FallbackCategory,
		AtomicInstallments: cfg.Ledger.AtomicInstallments,
	}, log)

	// Left as a nil interface when Kafka is disabled
	var publisher producers.InstallmentRequestPublisher
	if cfg.Kafka.Enabled {
		producer, err := producers.NewInstallmentRequestProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize installment request producer", "error", err)
			os.Exit(1)
		}
		publisher = producer
	} else {
		log.Info("Kafka disabled, asynchronous installment intake is off")
	}

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Entries:      engine,
		Reports:      ledger.NewAggregator(engine),
		Installments: service.NewInstallmentService(log, engine, publisher, cfg.Ledger.FallbackCategory),
	})

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")
	var shutdownErr error

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
			shutdownErr = err
		}
	}

	if err := closeStore(shutdownCtx); err != nil {
		log.Error("Error closing entry store", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Ledger API shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Ledger API shutdown completed successfully")
}
