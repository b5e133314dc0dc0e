package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjannette/pricetrack/internal/metrics"
	"github.com/kjannette/pricetrack/internal/models"
)

// PriceService is the core capability set the HTTP layer fronts.
type PriceService interface {
	RecordCurrentPrice(ctx context.Context, rawSymbol string) (*models.PriceRecord, error)
	GetHistory(ctx context.Context, page int) (*models.Page, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Options struct {
	Host            string
	Port            int
	APIKey          string
	CORSAllowOrigin string
	Debug           bool
}

type Server struct {
	svc        PriceService
	pool       *pgxpool.Pool
	reg        *metrics.Registry
	httpServer *http.Server
	apiKey     string
	debug      bool
}

func NewServer(pool *pgxpool.Pool, svc PriceService, reg *metrics.Registry, opts Options) *Server {
	s := &Server{
		svc:    svc,
		pool:   pool,
		reg:    reg,
		apiKey: opts.APIKey,
		debug:  opts.Debug,
	}

	mux := http.NewServeMux()

	// Price routes. The literal /price/history pattern wins over the
	// /price/{symbol} wildcard under 1.22 routing precedence.
	mux.HandleFunc("GET /price/{symbol}", s.handlePrice)
	mux.HandleFunc("GET /price/history", s.handleHistory)
	mux.HandleFunc("DELETE /price/history", s.handleDeleteHistory)

	// Monitoring (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	handler := s.requestIDMiddleware(
		s.metricsMiddleware(
			s.authMiddleware(corsMiddleware(mux, opts.CORSAllowOrigin))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server listening on %s\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware counts every request and every 4xx/5xx response on the
// injected registry.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.reg == nil {
			next.ServeHTTP(w, r)
			return
		}

		s.reg.IncRequests()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= 400 {
			s.reg.IncErrors()
		}
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

// requestIDMiddleware tags every response with an ID for log correlation,
// honoring one supplied by an upstream proxy.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

// parsePage reads the page query parameter; missing or non-numeric values
// default to 1. Values below 1 pass through and are coerced by the service.
func parsePage(r *http.Request) int {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 1
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServerError hides internal detail unless debug mode is on.
func (s *Server) writeServerError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"status": "error", "message": msg}
	if s.debug && err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
