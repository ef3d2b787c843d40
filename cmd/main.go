package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"landmarket/internal/adapter/clock"
	httpadapter "landmarket/internal/adapter/http"
	"landmarket/internal/adapter/notify"
	"landmarket/internal/adapter/payment"
	"landmarket/internal/adapter/usecase"
	"landmarket/internal/adapter/worker"
	"landmarket/internal/config"
	"landmarket/internal/db"
)

// main loads configuration, opens the configured ledger store, wires the
// use cases and starts the HTTP server and the campaign publisher. On
// SIGINT or SIGTERM it shuts both down gracefully.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}
	logger := cfg.Log.NewLogger(os.Stdout)

	loc, err := cfg.Ledger.Location()
	if err != nil {
		logger.Error("invalid timezone", slog.Any("error", err))
		return
	}
	clk := clock.NewSystem(loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger store", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		return
	}
	defer closeStore()

	opts := usecase.Options{
		Mode:       usecase.WriteMode(cfg.Ledger.WriteMode),
		Retries:    cfg.Ledger.ConflictRetries,
		RetryDelay: cfg.Ledger.ConflictDelay,
	}
	access := usecase.NewAccessLedger(store, clk, logger, opts)
	cart := usecase.NewCartAggregator(store, clk, logger, opts)
	payments := usecase.NewPaymentConfirmation(access, cart, store, logger, opts)
	slots := usecase.NewSlotLedger(store, logger, opts)
	sched := usecase.NewCampaignScheduler(slots, store, clk, logger, opts)
	negotiator := usecase.NewUnlockNegotiator(access, cart, payments, payment.NewMockGateway(cfg.Payment.DeclineAll, logger), logger)

	hub := notify.NewHub(store, logger)
	defer hub.Close()

	if cfg.SeedDemo {
		if err = db.Seed(ctx, access, sched, clk, logger); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		}
	}

	var wg sync.WaitGroup
	if cfg.Scheduler.Enabled {
		pub := worker.NewPublisher(sched, clk, cfg.Scheduler.PublishInterval, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.Run(ctx)
		}()
	}

	handler := httpadapter.NewHandler(httpadapter.Services{
		Access:     access,
		Cart:       cart,
		Negotiator: negotiator,
		Slots:      slots,
		Scheduler:  sched,
	}, hub, clk, logger, cfg.HTTP.EventBuffer)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
		// event streams end when ctx is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("server listening",
		slog.Int("port", int(cfg.HTTP.Port)),
		slog.String("store", cfg.Store.Driver),
		slog.String("write_mode", cfg.Ledger.WriteMode),
	)
	exitCode = serve(srv, quit, logger)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
	wg.Wait()
}
