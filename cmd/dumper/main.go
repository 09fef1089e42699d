// Command dumper subscribes to the configured venue feeds and appends
// top-of-book rows to one CSV file per (venue, symbol) pair.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"booksim/pkg/book"
	"booksim/pkg/config"
	"booksim/pkg/connectors"
	"booksim/pkg/logger"
	"booksim/pkg/models"

	"go.uber.org/zap"
)

type mw struct {
	w *csv.Writer
	m *sync.Mutex
}

func (w mw) write(rec []string) error {
	w.m.Lock()
	defer w.m.Unlock()
	return w.w.Write(rec)
}

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

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	books := book.NewStore(cfg.App.Depth)

	ch := make(chan models.UpdateBatch, 256)
	writers := make(map[book.Key]mw)
	for _, venue := range cfg.EnabledVenues() {
		adapter, err := connectors.ForVenue(venue)
		if err != nil {
			zl.Fatal("no adapter for venue", zap.Error(err))
		}

		vc := cfg.Venues[venue.String()]
		for _, symbol := range vc.Symbols {
			name := fmt.Sprintf("%s-%s-bbo.csv", venue, symbol)
			f, err := os.OpenFile(name, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
			if err != nil {
				zl.Fatal("failed to open file", zap.String("file", name), zap.Error(err))
			}

			key := book.Key{Venue: venue, Symbol: symbol}
			writers[key] = mw{w: csv.NewWriter(f), m: &sync.Mutex{}}
			defer func(f *os.File, w mw) {
				w.m.Lock()
				w.w.Flush()
				w.m.Unlock()
				f.Close()
			}(f, writers[key])
		}

		feed := connectors.NewFeed(adapter, vc.URL, vc.Symbols, zl)
		go feed.Run(ctx, ch)
	}

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			for _, w := range writers {
				w.m.Lock()
				w.w.Flush()
				w.m.Unlock()
			}
		}
	}()

	for {
		var snap models.BookSnapshot
		select {
		case <-ctx.Done():
			return
		case batch := <-ch:
			snap = books.Apply(batch)
		}

		w, ok := writers[book.Key{Venue: snap.Venue, Symbol: snap.Symbol}]
		if !ok {
			continue
		}

		rec := []string{strconv.FormatInt(snap.ObservedAt.UnixMilli(), 10), "0", "0", "0", "0"}
		if ask, ok := snap.BestAsk(); ok {
			rec[1] = ask.Price.String()
			rec[2] = ask.Size.String()
		}
		if bid, ok := snap.BestBid(); ok {
			rec[3] = bid.Price.String()
			rec[4] = bid.Size.String()
		}

		if err := w.write(rec); err != nil {
			zl.Warn("failed to write csv row",
				zap.String("venue", snap.Venue.String()),
				zap.String("symbol", snap.Symbol),
				zap.Error(err),
			)
		}
	}
}
