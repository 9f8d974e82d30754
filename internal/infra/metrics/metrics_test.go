package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "game_not_active", Result(fmt.Errorf("join: %w", escrow.ErrGameNotActive)))
	assert.Equal(t, "address_occupied", Result(fmt.Errorf("x: %w", fmt.Errorf("y: %w", escrow.ErrAddressOccupied))))
	assert.Equal(t, "error", Result(errors.New("connection reset")))
}

func TestRecordOperationAndPayout(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(operations.WithLabelValues("metrics_test_op", "unauthorized"))
	RecordOperation("metrics_test_op", escrow.ErrUnauthorized, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(operations.WithLabelValues("metrics_test_op", "unauthorized")))

	winner := testutil.ToFloat64(paidOut.WithLabelValues("winner"))
	fee := testutil.ToFloat64(paidOut.WithLabelValues("fee"))
	RecordPayout(270, 30)
	assert.GreaterOrEqual(t, testutil.ToFloat64(paidOut.WithLabelValues("winner"))-winner, float64(270))
	assert.GreaterOrEqual(t, testutil.ToFloat64(paidOut.WithLabelValues("fee"))-fee, float64(30))
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/games/{gameId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/12345", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/games/{gameId}", "418")), float64(1))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "wagerpool_http_requests_total"))
}

func TestInstrumentHandler_KeepsFlusherAndImplicitStatus(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/stream/{id}", func(w http.ResponseWriter, _ *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		fmt.Fprint(w, "chunk")
		f.Flush()
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/stream/{id}", "200"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Equal(t, "chunk", rec.Body.String())

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/stream/{id}", "200")))
}
