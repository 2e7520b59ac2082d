package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaughn-johnson/talkspace-public-api/internal/metrics"
	"github.com/vaughn-johnson/talkspace-public-api/internal/report"
	"github.com/vaughn-johnson/talkspace-public-api/internal/service"
)

// DailyService produces today's engagement result.
type DailyService interface {
	Daily(ctx context.Context) (*service.Result, error)
}

type Server struct {
	router *chi.Mux
	port   int
	daily  DailyService
	logger *slog.Logger
	http   *http.Server
}

func NewServer(port int, daily DailyService, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         3600,
	}))

	s := &Server{
		router: router,
		port:   port,
		daily:  daily,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/", s.engagement)
	router.Get("/api/v1/engagement", s.engagement)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called, then returns nil.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // a cold day computes inline
		IdleTimeout:       2 * time.Minute,
	}
	s.logger.Info("API server starting", "addr", addr)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) engagement(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.daily.Daily(r.Context())
	if err != nil {
		s.logger.Error("daily engagement failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to compute engagement")
		return
	}

	body, err := report.Encode(format, res.Rows)
	if err != nil {
		s.logger.Error("encode engagement failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode engagement")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if res.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
