package main

// GET  /products               - list the catalog
// PUT  /products/{id}          - create or replace a product
// GET  /carts                  - list carts with totals
// GET  /carts/{id}             - one cart with totals
// POST /carts/{id}/lines       - add a product to a cart
// DELETE /carts/{id}/lines     - empty a cart
// GET|POST /api/graphql        - GraphQL endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cart-catalog/config"
	"cart-catalog/events"
	"cart-catalog/handler"
	"cart-catalog/logger"
	"cart-catalog/service"
	"cart-catalog/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "cart-catalog",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- Seed ---
	seed, err := loadSeed(ctx, cfg, log)
	if err != nil {
		log.Error("load seed failed", slog.Any("err", err))
		os.Exit(1)
	}

	// --- Store ---
	st, err := store.NewMemoryStore(seed)
	if err != nil {
		log.Error("invalid seed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("store ready",
		slog.String("seed_source", cfg.SeedSource),
		slog.Int("products", len(seed.Products)),
		slog.Int("carts", len(seed.Carts)),
	)

	// --- Events ---
	var pub events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rp, err := events.DialRabbit(cfg.RabbitMQURL, log)
		if err != nil {
			log.Error("rabbitmq connect failed", slog.Any("err", err))
			os.Exit(1)
		}
		defer rp.Close()
		pub = rp
	}

	// --- Service ---
	svc := service.NewService(st, service.WithPublisher(pub), service.WithLogger(log))

	// --- Handlers ---
	h := handler.NewHandler(svc, log)
	router := handler.NewRouter(h, handler.RouterOptions{
		GraphQLEndpoint: cfg.GraphQLEndpoint,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	// --- Server ---
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr), slog.String("graphql", cfg.GraphQLEndpoint))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

// loadSeed returns the fixture data, or reads it once from Postgres.
func loadSeed(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Seed, error) {
	if cfg.SeedSource != config.SeedPostgres {
		return store.DefaultSeed(), nil
	}

	db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return store.Seed{}, err
	}
	defer db.Close()

	seeder := &store.PostgresSeeder{DB: db}
	if err := seeder.Migrate(ctx); err != nil {
		return store.Seed{}, err
	}
	log.Info("database migrations executed")

	return seeder.Load(ctx)
}
