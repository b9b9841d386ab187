package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "transport_error", Outcome(0))
	assert.Equal(t, "ok", Outcome(200))
	assert.Equal(t, "unauthorized", Outcome(401))
	assert.Equal(t, "client_error", Outcome(404))
	assert.Equal(t, "server_error", Outcome(503))
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/tours/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tours/1", nil))
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("/tours/:id", "GET", "200")))
}

func TestObserveBackendCall(t *testing.T) {
	m := New()
	m.ObserveBackendCall("tours", http.MethodGet, 0, time.Millisecond)
	m.ObserveBackendCall("tours", http.MethodGet, 200, time.Millisecond)
	m.ObserveBackendCall("tours", http.MethodGet, 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendCalls.WithLabelValues("tours", "GET", "transport_error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.backendCalls.WithLabelValues("tours", "GET", "ok")))
}

func TestSessionAndBookingEvents(t *testing.T) {
	m := New()
	m.SessionEvent("expired")
	m.BookingEvent("booking_created", nil)
	m.BookingEvent("booking_created", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionEvents.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingEvents.WithLabelValues("booking_created", "failed")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.SessionEvent("signed_in")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tourbooking_session_events_total"))
}
