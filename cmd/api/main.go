package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"waypost/api/internal/app"
	"waypost/api/internal/config"
	"waypost/api/internal/directory"
	"waypost/api/internal/edge"
	"waypost/api/internal/media"
	"waypost/api/internal/persist"
	"waypost/api/internal/upstream"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var store persist.Store
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		log.Printf("Using PostgreSQL for durable state")
		db, err := persist.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		pgStore, err := persist.NewPostgres(ctx, db)
		if err != nil {
			log.Fatalf("database setup failed: %v", err)
		}
		store = pgStore
	case strings.TrimSpace(cfg.RedisURL) != "":
		log.Printf("Using Redis for durable state")
		redisStore, err := persist.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	default:
		log.Printf("Using JSON files in %s for durable state", cfg.DataDir)
		fileStore, err := persist.NewFile(cfg.DataDir)
		if err != nil {
			log.Fatalf("failed to create data dir: %v", err)
		}
		store = fileStore
	}

	client := upstream.New(cfg.UpstreamURL, cfg.UpstreamToken, cfg.UpstreamTimeout)
	resolver := media.NewResolver(client, store)
	aggregator := directory.NewAggregator(client, resolver)
	groups := directory.NewIndex(client, store)
	purger := edge.NewPurger(cfg.PurgeURL, cfg.PurgeToken)

	service := app.New(cfg, aggregator, groups, resolver, store, purger)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (serving persisted snapshot until next rebuild): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Waypost API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
