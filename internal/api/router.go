package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fastprodman/wagerpool/internal/config"
	"github.com/fastprodman/wagerpool/internal/infra/metrics"
	"github.com/fastprodman/wagerpool/internal/reqsign"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc GameService, cfg config.APIConfig) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/games/{gameId}", h.GetGameHandler)
	r.Get("/games/{gameId}/players/{identity}", h.GetParticipantHandler)
	r.Get("/accounts/{address}", h.GetAccountHandler)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitPerMin > 0 {
		limit = httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute)
	}

	verifier := reqsign.Verifier{MaxSkew: cfg.SignatureMaxSkew}

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Use(RequireSignature(verifier))

		r.Post("/games", h.InitializeGameHandler)
		r.Post("/games/{gameId}/join", h.JoinGameHandler)
		r.Post("/games/{gameId}/end", h.EndGameHandler)
	})

	if cfg.AirdropEnabled {
		r.With(limit).Post("/airdrop", h.AirdropHandler)
	}

	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
