package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"booksim/pkg/book"
	"booksim/pkg/config"
	"booksim/pkg/connectors"
	"booksim/pkg/logger"
	"booksim/pkg/models"
	"booksim/pkg/server"
	"booksim/pkg/sim"
	"booksim/pkg/stats"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Filename:   cfg.Log.Filename,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	books := book.NewStore(cfg.App.Depth)
	tracker := stats.NewTracker()
	desk := sim.NewDesk(books, sim.NewLedger(), zl)
	hub := server.NewHub()

	ch := make(chan models.UpdateBatch, 256)
	for _, venue := range cfg.EnabledVenues() {
		adapter, err := connectors.ForVenue(venue)
		if err != nil {
			zl.Fatal("no adapter for venue", zap.Error(err))
		}

		vc := cfg.Venues[venue.String()]
		feed := connectors.NewFeed(adapter, vc.URL, vc.Symbols, zl)
		go feed.Run(ctx, ch)
	}

	// Single consumer keeps per-book updates strictly in arrival order.
	go func() {
		for {
			select {
			case batch := <-ch:
				snap := books.Apply(batch)
				tracker.Observe(snap)
				hub.Broadcast(snap)
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := server.New(books, desk, tracker, hub, zl)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.App.Listen))
		if err := srv.Listen(cfg.App.Listen); err != nil {
			zl.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("forced shutdown", zap.Error(err))
	}
	zl.Info("bye")
}
