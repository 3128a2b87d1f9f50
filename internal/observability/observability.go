package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// Metrics instruments the solver pipeline itself rather than a web
// server: fork volume per role (the idiomatic replacement for the
// reference implementation's printed fork-profiling table), prune
// volume per reason, solve latency, and active worker occupancy.
type Metrics struct {
	ForksTotal       *prometheus.CounterVec
	PrunesTotal      *prometheus.CounterVec
	SolveLatency     prometheus.Observer
	SolutionsFound   prometheus.Histogram
	ActiveWorkers    prometheus.Gauge
	CacheHitTotal    prometheus.Counter
	CacheMissTotal   prometheus.Counter
	QueuePublishFail prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}
	return &Metrics{
		ForksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "solver_forks_total",
			Help: "Branch points created during a solve, by the role responsible",
		}, []string{"role"}),
		PrunesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "solver_prunes_total",
			Help: "Branches discarded during a solve, by reason",
		}, []string{"reason"}),
		SolveLatency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "solver_solve_latency_ms",
			Help:    "Wall-clock latency of a full solve",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
		SolutionsFound: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "solver_solutions_found",
			Help:    "Number of surviving worlds returned per solve",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "solver_active_workers",
			Help: "In-process worker goroutines currently solving",
		}),
		CacheHitTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "solver_result_cache_hit_total",
			Help: "Result cache hits",
		}),
		CacheMissTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "solver_result_cache_miss_total",
			Help: "Result cache misses",
		}),
		QueuePublishFail: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "solver_distqueue_publish_fail_total",
			Help: "Failed publishes to the distributed work queue",
		}),
	}
}

func SetupTracerProvider(ctx context.Context, serviceName string, stdout bool, logger *zap.Logger) (*sdktrace.TracerProvider, error) {
	var exporter *stdouttrace.Exporter
	var err error
	if stdout {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
	}

	rs := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(rs),
	)
	if exporter != nil {
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	}
	otel.SetTracerProvider(tp)
	logger.Info("tracer initialized")
	return tp, nil
}

func SetupLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	return cfg.Build()
}

// ZapToSlog wraps a zap.Logger as slog.Logger.
func ZapToSlog(logger *zap.Logger) *slog.Logger {
	return slog.New(slogHandler{logger.Sugar()})
}

type slogHandler struct {
	sugar *zap.SugaredLogger
}

func (h slogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h slogHandler) Handle(ctx context.Context, r slog.Record) error {
	args := make([]interface{}, 0, r.NumAttrs()*2)
	r.Attrs(func(a slog.Attr) bool {
		args = append(args, a.Key, a.Value.Any())
		return true
	})
	switch r.Level {
	case slog.LevelDebug:
		h.sugar.Debugw(r.Message, args...)
	case slog.LevelInfo:
		h.sugar.Infow(r.Message, args...)
	case slog.LevelWarn:
		h.sugar.Warnw(r.Message, args...)
	case slog.LevelError:
		h.sugar.Errorw(r.Message, args...)
	}
	return nil
}

func (h slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	args := make([]interface{}, 0, len(attrs)*2)
	for _, a := range attrs {
		args = append(args, a.Key, a.Value.Any())
	}
	return slogHandler{h.sugar.With(args...)}
}

func (h slogHandler) WithGroup(name string) slog.Handler {
	return h
}
