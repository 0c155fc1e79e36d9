package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/x", 200, time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.IncBookingCreated("exclusive")
		m.IncBookingConflict("create")
		m.IncAvailabilityFailOpen("single")
		m.AddCreditsGranted(5)
		m.AddCreditsSpent(1)
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := New("lesson-booking")

	m.IncBookingCreated("exclusive")
	m.IncBookingCreated("exclusive")
	m.IncAvailabilityFailOpen("batch")
	m.AddCreditsGranted(5)
	m.AddCreditsSpent(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("exclusive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.availabilityFails.WithLabelValues("batch")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.creditsGranted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.creditsSpent))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("lesson-booking")
	m.IncBookingConflict("create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking_conflicts_total")
}
