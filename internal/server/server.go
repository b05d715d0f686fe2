// Package server exposes the ledger over a JSON HTTP API for the club
// terminal frontend.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/ledger"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/metrics"
)

// Server holds the handler dependencies.
type Server struct {
	engine *ledger.Engine
}

// New creates a Server around a transaction engine.
func New(engine *ledger.Engine) *Server {
	return &Server{engine: engine}
}

// Handler builds the route table and wraps it with the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", s.handleRenameAccount)
	mux.HandleFunc("POST /api/accounts/{id}/card", s.handleRegisterCard)
	mux.HandleFunc("GET /api/cards/{code}", s.handleAccountByCard)

	mux.HandleFunc("GET /api/accounts/{id}/transactions", s.handleHistory)
	mux.HandleFunc("POST /api/accounts/{id}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/accounts/{id}/withdraw", s.handleWithdraw)
	mux.HandleFunc("POST /api/accounts/{id}/send", s.handleSend)
	mux.HandleFunc("POST /api/accounts/{id}/split", s.handleSplit)
	mux.HandleFunc("POST /api/accounts/{id}/buy", s.handleBuy)
	mux.HandleFunc("POST /api/transactions/{id}/undo", s.handleUndo)

	mux.HandleFunc("GET /api/groups/{id}/members", s.handleGroupMembers)

	mux.HandleFunc("GET /api/articles", s.handleListArticles)
	mux.HandleFunc("POST /api/articles", s.handleCreateArticle)
	mux.HandleFunc("PUT /api/articles/{id}/price", s.handleSetArticlePrice)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return loggingMiddleware(corsMiddleware(mux))
}

// loggingMiddleware logs all incoming requests and records their latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(duration.Seconds())

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote_addr", r.RemoteAddr,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access from the terminal UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
