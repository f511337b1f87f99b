package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/data"
	"github.com/personal-finance-ledger/internal/installment_processor/consumer"
	"github.com/personal-finance-ledger/internal/installment_processor/service"
	"github.com/personal-finance-ledger/internal/ledger"
	"github.com/personal-finance-ledger/internal/logger"
	"github.com/personal-finance-ledger/internal/platform/messaging/consumers"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("installment_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Installment Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"store", cfg.Store.Driver,
	)

	if !cfg.Kafka.Enabled {
		log.Error("Installment processor requires KAFKA_ENABLED=true")
		os.Exit(1)
	}
	if cfg.Store.Driver == config.StoreDriverMemory {
		// Entries would be invisible to the API process
		log.Error("Installment processor cannot use the in-memory store")
		os.Exit(1)
	}

	store, closeStore, err := data.OpenEntryStore(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open entry store", "error", err)
		os.Exit(1)
	}

	engine := ledger.NewEngine(store, ledger.Options{
		FallbackCategory:   cfg.Ledger.FallbackCategory,
		AtomicInstallments: cfg.Ledger.AtomicInstallments,
	}, log)

	workerPool, err := service.NewWorkerPoolProcessingService(
		service.NewProcessingService(engine, log),
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to create worker pool", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer must not reach the handler as a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	handler := consumer.NewInstallmentEventHandler(log, workerPool, deadLetters)
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to installment topic", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")
	var shutdownErr error

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		shutdownErr = err
	}

	workerPool.Shutdown()

	if deadLetters != nil {
		if err := deadLetters.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
			shutdownErr = err
		}
	}

	if err := closeStore(shutdownCtx); err != nil {
		log.Error("Error closing entry store", "error", err)
		shutdownErr = err
	}

	if shutdownErr != nil {
		log.Error("Installment Processor shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Installment Processor shutdown completed successfully")
}
