package main

import (
	"context"
	"net/http"
	"time"

	"bookworld/internal/config"
	"bookworld/internal/detail"
	"bookworld/internal/discovery"
	"bookworld/internal/httpx"
	"bookworld/internal/pages"
	"bookworld/internal/profile"
	"bookworld/internal/readinglist"

	"go.uber.org/zap"
)

// pinger is satisfied by storage that can report readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	pages     *pages.HTTPHandler
	discovery *discovery.HTTPHandler
	detail    *detail.HTTPHandler
	lists     *readinglist.HTTPHandler
	profile   *profile.HTTPHandler
	ready     pinger
}

func newRouter(h handlers) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if h.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := h.ready.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /{$}", h.pages.Home)
	router.HandleFunc("GET /login", h.pages.LoginPage)
	router.HandleFunc("POST /login", h.pages.LoginSubmit)

	router.HandleFunc("GET /discover", h.discovery.Discover)

	router.HandleFunc("GET /works/{id}", h.detail.Get)
	router.HandleFunc("POST /works/{id}/toggle", h.detail.Toggle)

	router.HandleFunc("GET /lists", h.lists.List)
	router.HandleFunc("DELETE /lists/{id}", h.lists.Remove)

	router.HandleFunc("GET /profile", h.profile.GetProfile)

	router.HandleFunc("/", h.pages.NotFound)

	return router
}

// withMiddleware wraps the router; the first middleware listed runs first.
func withMiddleware(router http.Handler, cfg config.Config, hashKey []byte, rl *httpx.RateLimitMiddleware, logger *zap.Logger) http.Handler {
	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.OpenLibraryCoversURL, cfg.IsProduction()),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
		httpx.NewVisitorMiddleware(hashKey, cfg.IsProduction()).Middleware,
		rl.Middleware,
		httpx.NotificationsMiddleware,
	)
}
