package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dailymoney/internal/amqp"
	"dailymoney/internal/config"
	apphttp "dailymoney/internal/http"
	applog "dailymoney/internal/log"
	"dailymoney/internal/repository"
	"dailymoney/internal/services"
	"dailymoney/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, "db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// events stays nil without a broker; the services treat nil as "do not
	// publish".
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			defer client.Close()
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			events = client
		}
	}

	ledgers := repository.NewLedgerRepository(store)
	categories := repository.NewCategoryRepository(store)
	transactions := repository.NewTransactionRepository(store)

	ledgerService := services.NewLedgerService(ledgers, transactions, events)
	categoryService := services.NewCategoryService(categories, events)
	transactionService := services.NewTransactionService(transactions, events)
	stats := services.NewStatisticsService(transactions)
	transfer := services.NewTransferService(ledgers, categories, transactions)

	srv := apphttp.NewServer(":"+cfg.Port, cfg, store,
		ledgers, categories, transactions,
		ledgerService, categoryService, transactionService, stats, transfer)
	defer srv.Stop()

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting dailymoney server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped")
}
