package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAdWatch(t *testing.T) {
	before := testutil.ToFloat64(adWatches.WithLabelValues("ok"))
	RecordAdWatch("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(adWatches.WithLabelValues("ok")))
}

func TestAddPoints(t *testing.T) {
	before := testutil.ToFloat64(pointsAwarded.WithLabelValues(SourceAd))
	AddPoints(SourceAd, 0.5)
	AddPoints(SourceAd, 0)
	AddPoints(SourceAd, -3)
	assert.InDelta(t, before+0.5, testutil.ToFloat64(pointsAwarded.WithLabelValues(SourceAd)), 1e-9)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ObserveHTTP("GET", "/api/tasks", 200, 10*time.Millisecond)
	RecordWithdrawal("pending")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ad_reward_http_requests_total")
	assert.Contains(t, body, `path="/api/tasks"`)
	assert.Contains(t, body, "ad_reward_withdrawal_transitions_total")
}

func TestObserveHTTP_UnmatchedPath(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}
