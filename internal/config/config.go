package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the solver service's flat runtime configuration, loaded once
// at startup from the environment (see cmd/solverd/main.go).
type Config struct {
	HTTPAddr          string
	WSReadBufferSize  int
	WSWriteBufferSize int

	JWTSecret      string
	PrometheusAddr string
	TraceStdout    bool

	// SolveWorkers bounds in-process parallel solving; 0 or 1 run serially.
	SolveWorkers int
	// SolveTimeout is loaded from the environment, but no request handler
	// reads it: a /solve request runs under the request's own context
	// with no timeout from this setting.
	SolveTimeout time.Duration

	// ResultCacheDSN, when set, backs the memoization cache
	// (internal/resultcache) with MySQL. Empty keeps the cache in memory.
	ResultCacheDSN string

	// DistQueueURL, when set, enables the optional AMQP-backed
	// cross-host worker transport (internal/distqueue). Empty keeps
	// solving entirely in-process.
	DistQueueURL string
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Load() Config {
	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		WSReadBufferSize:  getEnvInt("WS_READ_BUFFER", 4096),
		WSWriteBufferSize: getEnvInt("WS_WRITE_BUFFER", 4096),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change"),
		PrometheusAddr: getEnv("PROM_ADDR", ":9090"),
		TraceStdout:    getEnvBool("TRACE_STDOUT", true),

		SolveWorkers: getEnvInt("SOLVE_WORKERS", 1),
		SolveTimeout: time.Duration(getEnvInt("SOLVE_TIMEOUT_SEC", 300)) * time.Second,

		ResultCacheDSN: getEnv("RESULT_CACHE_DSN", ""),
		DistQueueURL:   getEnv("DIST_QUEUE_URL", ""),
	}
}
