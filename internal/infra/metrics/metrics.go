package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wagerpool"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "operations_total",
			Help:      "Game operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "operation_duration_seconds",
			Help:      "Duration of game operations including the database transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	paidOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "paid_out_lamports_total",
			Help:      "Lamports moved out of vaults at resolution.",
		},
		[]string{"share"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		operations,
		operationDuration,
		paidOut,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics. Requests are labelled with the
// matched chi route pattern so path parameters do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		method := strings.ToUpper(r.Method)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordOperation counts one game operation and its latency.
func RecordOperation(operation string, err error, duration time.Duration) {
	operations.WithLabelValues(operation, Result(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPayout adds the two shares of a resolved pool.
func RecordPayout(winnerPrize, fee uint64) {
	paidOut.WithLabelValues("winner").Add(float64(winnerPrize))
	paidOut.WithLabelValues("fee").Add(float64(fee))
}

var resultLabels = []struct {
	err   error
	label string
}{
	{escrow.ErrGameNotActive, "game_not_active"},
	{escrow.ErrUnauthorized, "unauthorized"},
	{escrow.ErrFeeRecipientMismatch, "fee_recipient_mismatch"},
	{escrow.ErrAddressOccupied, "address_occupied"},
	{escrow.ErrArithmeticOverflow, "overflow"},
	{escrow.ErrArithmeticUnderflow, "underflow"},
	{escrow.ErrInsufficientBalance, "insufficient_balance"},
	{escrow.ErrNotAWallet, "not_a_wallet"},
	{escrow.ErrNotFound, "not_found"},
}

// Result maps an operation error to a bounded label value.
func Result(err error) string {
	if err == nil {
		return "ok"
	}

	for _, rl := range resultLabels {
		if errors.Is(err, rl.err) {
			return rl.label
		}
	}

	return "error"
}
