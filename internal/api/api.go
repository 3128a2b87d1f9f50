// Package api provides the HTTP surface for the puzzle solver service.
//
// @title Clocktower Solver API
// @version 1.0
// @description Finds every world consistent with a set of claimed information and public records for a social-deduction puzzle.
//
// @contact.name API Support
// @contact.url https://github.com/qingchang/clocktower-solver
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter 'Bearer {token}' to authorize
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/qingchang/clocktower-solver/internal/apperr"
	"github.com/qingchang/clocktower-solver/internal/auth"
	"github.com/qingchang/clocktower-solver/internal/observability"
	"github.com/qingchang/clocktower-solver/internal/resultcache"
	"github.com/qingchang/clocktower-solver/internal/solver"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// PuzzleLoader resolves a puzzle by ID to its worldstate.Puzzle, e.g.
// from an in-memory fixture registry.
type PuzzleLoader func(ctx context.Context, id string) (*worldstate.Puzzle, error)

type Server struct {
	Router  *chi.Mux
	jwt     *auth.JWTManager
	logger  *zap.Logger
	metrics *observability.Metrics
	load    PuzzleLoader
	workers int
	cache   *resultcache.Cache

	upgrader websocket.Upgrader
}

func NewServer(jwt *auth.JWTManager, logger *zap.Logger, metrics *observability.Metrics, workers int, load PuzzleLoader) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	s := &Server{
		Router:   r,
		jwt:      jwt,
		logger:   logger,
		metrics:  metrics,
		load:     load,
		workers:  workers,
		cache:    resultcache.NewMemoryCache(),
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/v1/puzzles", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/{puzzle_id}/solve", s.solve)
		r.Get("/{puzzle_id}/solutions/stream", s.streamSolve)
	})

	return s
}

// WithCache swaps the default in-memory result cache for a caller-supplied
// one (typically a MySQL-backed resultcache.Cache), returning s for
// chaining at construction time.
func (s *Server) WithCache(cache *resultcache.Cache) *Server {
	s.cache = cache
	return s
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthz godoc
// @Summary Health check endpoint
// @Tags System
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

type solveResponse struct {
	RequestID string   `json:"request_id"`
	Solutions []string `json:"solutions"`
	Count     int      `json:"count"`
}

// solve godoc
// @Summary Solve a puzzle
// @Tags Solver
// @Security BearerAuth
// @Produce json
// @Success 200 {object} solveResponse
// @Router /v1/puzzles/{puzzle_id}/solve [post]
func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	puzzleID := chi.URLParam(r, "puzzle_id")
	reqID := uuid.NewString()
	start := time.Now()

	puzzleHash, hashErr := resultcache.HashPuzzle(puzzleID)
	if hashErr == nil && s.cache != nil {
		if entry, err := s.cache.Get(r.Context(), puzzleHash); err == nil && entry != nil {
			s.metrics.CacheHitTotal.Inc()
			json.NewEncoder(w).Encode(solveResponse{RequestID: reqID, Solutions: entry.Solutions, Count: len(entry.Solutions)})
			return
		}
		s.metrics.CacheMissTotal.Inc()
	}

	puzzle, err := s.load(r.Context(), puzzleID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	solutions, err := solver.Solve(r.Context(), puzzle, solver.Options{Workers: s.workers})
	s.metrics.SolveLatency.Observe(float64(time.Since(start).Milliseconds()))
	s.metrics.SolutionsFound.Observe(float64(len(solutions)))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := solveResponse{RequestID: reqID, Count: len(solutions)}
	for _, sol := range solutions {
		resp.Solutions = append(resp.Solutions, sol.Render())
	}
	if hashErr == nil && s.cache != nil {
		if err := s.cache.Put(r.Context(), resultcache.Entry{PuzzleHash: puzzleHash, Solutions: resp.Solutions, SolvedAt: start}); err != nil {
			s.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	s.logger.Info("solved", zap.String("puzzle_id", puzzleID), zap.String("request_id", reqID), zap.Int("count", len(solutions)))
	json.NewEncoder(w).Encode(resp)
}

// streamSolve godoc
// @Summary Stream solutions to a puzzle one at a time over a websocket
// @Tags Solver
// @Security BearerAuth
// @Router /v1/puzzles/{puzzle_id}/solutions/stream [get]
func (s *Server) streamSolve(w http.ResponseWriter, r *http.Request) {
	puzzleID := chi.URLParam(r, "puzzle_id")
	puzzle, err := s.load(r.Context(), puzzleID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	solutions, err := solver.Solve(r.Context(), puzzle, solver.Options{Workers: s.workers})
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	for _, sol := range solutions {
		if err := conn.WriteJSON(map[string]string{"world": sol.Render()}); err != nil {
			return
		}
	}
	conn.WriteJSON(map[string]string{"status": "done"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if apperr.Is(err, apperr.CodeValidation) {
		status = http.StatusBadRequest
	} else if apperr.Is(err, apperr.CodeCancelled) {
		status = http.StatusRequestTimeout
	} else if apperr.Is(err, apperr.CodeNotImplemented) {
		status = http.StatusNotImplemented
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		tokenStr := authHeader[7:]
		claims, err := s.jwt.Parse(tokenStr)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), requestIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
