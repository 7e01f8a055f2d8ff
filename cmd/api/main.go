package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookworld/internal/catalog"
	"bookworld/internal/config"
	"bookworld/internal/detail"
	"bookworld/internal/discovery"
	"bookworld/internal/httpx"
	"bookworld/internal/pages"
	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/profile"
	"bookworld/internal/readinglist"

	"github.com/gorilla/securecookie"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	var (
		kv    readinglist.KV
		ready pinger
	)
	if cfg.DatabaseDSN != "" {
		dbPool, err := openDB(cfg.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		pgKV := readinglist.NewPostgresKV(dbPool, 3*time.Second)
		kv, ready = pgKV, pgKV
	} else {
		logger.Warn("DB_DSN not set, reading lists are kept in memory")
		kv = readinglist.NewMemoryKV()
	}

	hashKey := cfg.CookieHashKey
	if hashKey == nil {
		logger.Warn("COOKIE_HASH_KEY not set, visitor cookies will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	client := openlibrary.NewClient(openlibrary.Options{
		BaseURL:   cfg.OpenLibraryBaseURL,
		CoversURL: cfg.OpenLibraryCoversURL,
		UserAgent: cfg.OpenLibraryUserAgent,
		RPS:       cfg.OpenLibraryRPS,
		Timeout:   cfg.OpenLibraryTimeout,
	})
	catalogService := catalog.NewService(client, logger.Named("catalog"))
	readingListService := readinglist.NewService(kv, logger.Named("readinglist"))

	router := newRouter(handlers{
		pages:     pages.NewHTTPHandler(),
		discovery: discovery.NewHTTPHandler(discovery.NewService(catalogService, logger.Named("discovery"))),
		detail:    detail.NewHTTPHandler(detail.NewService(catalogService, logger.Named("detail")), readingListService),
		lists:     readinglist.NewHTTPHandler(readingListService, logger.Named("readinglist")),
		profile:   profile.NewHTTPHandler(profile.NewService(readingListService), logger.Named("profile")),
		ready:     ready,
	})

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	handler := withMiddleware(router, cfg, hashKey, rateLimiter, logger.Named("http"))

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.OpenLibraryTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Error("cannot ping database", zap.String("dsn", redactDSN(dsn)))
		return nil, err
	}
	logger.Info("database connection OK")
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
