package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/qingchang/clocktower-solver/internal/api"
	"github.com/qingchang/clocktower-solver/internal/auth"
	"github.com/qingchang/clocktower-solver/internal/config"
	"github.com/qingchang/clocktower-solver/internal/distqueue"
	"github.com/qingchang/clocktower-solver/internal/observability"
	"github.com/qingchang/clocktower-solver/internal/puzzlefixtures"
	"github.com/qingchang/clocktower-solver/internal/resultcache"
	"github.com/qingchang/clocktower-solver/internal/solver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	fmt.Println("==================================================")
	fmt.Println("   CLOCKTOWER SOLVER SERVICE STARTING             ")
	fmt.Println("==================================================")

	cfg := config.Load()
	logger, err := observability.SetupLogger()
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := observability.SetupTracerProvider(ctx, "clocktower-solver", cfg.TraceStdout, logger)
	if err != nil {
		logger.Fatal("cannot init tracer", zap.Error(err))
	}
	defer tp.Shutdown(ctx)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer.(*prometheus.Registry))
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	var cache *resultcache.Cache
	if cfg.ResultCacheDSN != "" {
		db, err := resultcache.ConnectMySQL(cfg.ResultCacheDSN)
		if err != nil {
			logger.Warn("cannot connect result cache, falling back to in-memory", zap.Error(err))
			cache = resultcache.NewMemoryCache()
		} else {
			defer db.Close()
			cache = resultcache.New(db)
		}
	} else {
		cache = resultcache.NewMemoryCache()
	}

	var dq *distqueue.Queue
	if cfg.DistQueueURL != "" {
		slogLogger := observability.ZapToSlog(logger)
		dq, err = distqueue.New(distqueue.Config{
			URL:       cfg.DistQueueURL,
			QueueName: "solver_jobs",
			Prefetch:  cfg.SolveWorkers,
			Logger:    slogLogger,
		})
		if err != nil {
			logger.Warn("failed to connect to distributed work queue", zap.Error(err))
			dq = nil
		} else {
			logger.Info("distributed work queue connected", zap.String("url", cfg.DistQueueURL))
			defer dq.Close()
			dq.RegisterHandler("solve_start", func(ctx context.Context, job distqueue.Job) ([]string, error) {
				puzzle, err := puzzlefixtures.LoadByID(ctx, job.PuzzleID)
				if err != nil {
					return nil, err
				}
				worlds, err := solver.Solve(ctx, puzzle, solver.Options{Workers: 1})
				if err != nil {
					return nil, err
				}
				rendered := make([]string, len(worlds))
				for i, w := range worlds {
					rendered[i] = w.Render()
				}
				return rendered, nil
			})
			if err := dq.Start(ctx); err != nil {
				logger.Error("failed to start distributed work queue consumer", zap.Error(err))
			}
		}
	}

	server := api.NewServer(jwtMgr, logger, metrics, cfg.SolveWorkers, puzzlefixtures.LoadByID).WithCache(cache)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router}
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}
