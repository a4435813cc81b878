package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/bloop/internal/analysis"
)

// Analyzer runs one analysis. *analysis.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, filename string) (*analysis.Result, error)
	InFlight() int
	Capacity() int
}

type Config struct {
	Host            string
	Port            int
	APIKey          string
	MaxUploadBytes  int64
	AnalysisTimeout time.Duration
	CORSOrigins     []string
}

type Server struct {
	router   *chi.Mux
	cfg      Config
	analyzer Analyzer
	logger   *slog.Logger
	http     *http.Server
}

func NewServer(cfg Config, analyzer Analyzer, logger *slog.Logger) *Server {
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 2 * time.Minute
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:   router,
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Get("/health", s.health)

	router.Group(func(r chi.Router) {
		if cfg.MaxUploadBytes > 0 {
			r.Use(LimitUploadSize(cfg.MaxUploadBytes))
		}
		if cfg.APIKey != "" {
			r.Use(APIKeyMiddleware(cfg.APIKey))
		} else {
			logger.Warn("API key protection disabled for analyze endpoint")
		}
		r.Post("/api/v1/analyze", s.analyze)
		r.Post("/analyze/", s.analyze)
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called. It returns nil at once
// if Shutdown already ran.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"analyses_in_flight": s.analyzer.InFlight(),
		"analyses_capacity":  s.analyzer.Capacity(),
	})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, sizeLimitMessage(s.cfg.MaxUploadBytes))
			return
		}
		logger.Warn("missing upload", "error", err)
		writeDetail(w, http.StatusBadRequest, "Could not get file from request")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	logger = logger.With("file", filename)
	if header.Filename == "" {
		writeDetail(w, http.StatusBadRequest, "Filename cannot be empty.")
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".txt") {
		logger.Warn("rejected upload extension")
		writeDetail(w, http.StatusBadRequest, "Invalid file extension. Please upload a .txt file.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AnalysisTimeout)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, file, filename)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrBusy):
		logger.Warn("analysis rejected, server busy")
		writeDetail(w, http.StatusTooManyRequests, "Server is busy processing other analyses, please try again later.")
		return
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("analysis timed out", "timeout", s.cfg.AnalysisTimeout)
		writeDetail(w, http.StatusGatewayTimeout, fmt.Sprintf("Analysis processing timed out after %s.", s.cfg.AnalysisTimeout))
		return
	case errors.Is(err, context.Canceled):
		logger.Info("client went away during analysis")
		return
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, sizeLimitMessage(s.cfg.MaxUploadBytes))
			return
		}
		logger.Error("analysis failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %s", err))
		return
	}

	if result.Error != "" {
		logger.Warn("analysis completed with errors", "analysis_id", result.ID, "detail", result.Error)
	}
	writeJSON(w, http.StatusOK, result)
}

func sizeLimitMessage(limit int64) string {
	return fmt.Sprintf("Maximum request body size limit exceeded (%s)", humanize.IBytes(uint64(limit)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
