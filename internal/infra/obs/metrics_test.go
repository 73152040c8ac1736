package obs_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"offerbook/internal/infra/obs"
)

func TestMetricsCollect(t *testing.T) {
	m := obs.NewMetrics()
	m.ObserveCheck("offer", "free")
	m.ObserveCheck("offer", "conflict")
	m.ObserveCheck("host", "conflict")
	m.ObserveRanking(3 * time.Millisecond)
	m.ObserveLockWait("memory", time.Millisecond, nil)
	m.ObservePublish(nil)
	m.ObservePublish(errors.New("broker down"))

	count, err := testutil.GatherAndCount(m.Gatherer(), "availability_checks_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	expected := `
# HELP outbox_fail_total Total number of outbox publish failures.
# TYPE outbox_fail_total counter
outbox_fail_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "outbox_fail_total"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *obs.Metrics
	m.ObserveCheck("offer", "free")
	m.ObserveRanking(time.Second)
	m.ObserveLockWait("redis", time.Second, errors.New("timeout"))
	m.ObserveRequest("GET", "/", 200, time.Second)
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := obs.NewMetrics()
	m.ObserveCheck("offer", "free")

	r := gin.New()
	r.Use(obs.Middleware{Metrics: m}.LoggerMiddleware())
	r.GET("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `availability_checks_total{result="free",scope="offer"} 1`)
}
