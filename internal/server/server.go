package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonathan/listing-optimizer/internal/pipeline"
	"github.com/jonathan/listing-optimizer/internal/recommend"
	"github.com/jonathan/listing-optimizer/internal/server/ratelimit"
	"github.com/jonathan/listing-optimizer/internal/store"
)

// maxBodyBytes caps request bodies, including keyword imports.
const maxBodyBytes = 4 << 20

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	router          chi.Router
	engines         pipeline.Engines
	store           store.Store
	logger          *slog.Logger
	rateLimiter     *ratelimit.Limiter
	diversityFactor float64
	randomSeed      *uint64
}

// Config holds server configuration. The store is owned by the caller and is not closed by the server.
type Config struct {
	Port    int
	Engines pipeline.Engines
	Store   store.Store
	Logger  *slog.Logger
	// RateLimit nil selects ratelimit.DefaultConfig.
	RateLimit *ratelimit.Config
	// DiversityFactor is used by recommendation requests that do not set one.
	DiversityFactor float64
	// RandomSeed, when set, makes every recommendation reproducible.
	RandomSeed *uint64
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Engines.Scorer == nil || cfg.Engines.Generator == nil || cfg.Engines.Categories == nil {
		return nil, errors.New("server: scorer, generator and category recommender are required")
	}
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engines:         cfg.Engines,
		store:           cfg.Store,
		logger:          logger,
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		diversityFactor: cfg.DiversityFactor,
		randomSeed:      cfg.RandomSeed,
	}
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(s.withCORS)
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)

	r.Route("/keywords", func(r chi.Router) {
		r.Get("/", s.handleListKeywords)
		r.Post("/", s.handleCreateKeyword)
		r.Post("/score", s.handleScoreKeywords)
		r.Post("/recommend", s.handleRecommendKeywords)
		r.Post("/gaps", s.handleKeywordGaps)
		r.Post("/rescore", s.handleRescoreKeywords)
		r.Post("/import", s.handleImportKeywords)
		r.Get("/export", s.handleExportKeywords)
		r.Get("/{id}", s.handleGetKeyword)
		r.Put("/{id}", s.handleUpdateKeyword)
		r.Delete("/{id}", s.handleDeleteKeyword)
	})

	r.Route("/titles", func(r chi.Router) {
		r.Post("/generate", s.handleGenerateTitles)
		r.Post("/evaluate", s.handleEvaluateTitle)
		r.Post("/spacing", s.handleSpacing)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleSearchCategories)
		r.Post("/recommend", s.handleRecommendCategories)
		r.Get("/{name}/checklist", s.handleCategoryChecklist)
		r.Put("/rules", s.handlePutCategoryRule)
		r.Delete("/rules/{name}", s.handleDeleteCategoryRule)
	})

	r.Post("/analyze", s.handleAnalyze)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Get("/{id}", s.handleGetProject)
		r.Put("/{id}", s.handleUpdateProject)
		r.Delete("/{id}", s.handleDeleteProject)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their limit with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs one line per request with its status and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse maps err onto a status code and writes it as JSON
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	s.jsonResponse(w, status, newErrorBody(status, err))
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return &ErrBadRequest{Message: "invalid JSON body", Cause: err}
	}
	return nil
}

// random returns the source for one recommendation request. A request seed wins over the server seed.
func (s *Server) random(seed *uint64) recommend.RandomSource {
	switch {
	case seed != nil:
		return recommend.NewSeededSource(*seed)
	case s.randomSeed != nil:
		return recommend.NewSeededSource(*s.randomSeed)
	default:
		return recommend.NewSeededSource(rand.Uint64())
	}
}

// extractClientID uses the IP from RemoteAddr; forwarding headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"client", extractClientID(r),
		"path", r.URL.Path,
		"limit", info.Limit,
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
