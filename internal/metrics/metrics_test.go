package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordWorkoutsCreated(t *testing.T) {
	before := testutil.ToFloat64(workoutsCreated.WithLabelValues("trainer"))
	RecordWorkoutsCreated("trainer", 4)
	assert.Equal(t, before+4, testutil.ToFloat64(workoutsCreated.WithLabelValues("trainer")))
}

func TestRecordSeriesDeletion(t *testing.T) {
	before := testutil.ToFloat64(seriesDeletions)
	RecordSeriesDeletion(3)
	RecordSeriesDeletion(0)
	assert.Equal(t, before+2, testutil.ToFloat64(seriesDeletions))
}

func TestRecordHTTPRequest(t *testing.T) {
	c := httpRequests.WithLabelValues("unmatched", http.MethodGet, "404")
	before := testutil.ToFloat64(c)
	RecordHTTPRequest("", http.MethodGet, http.StatusNotFound, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordPackageSessionAndNotification(t *testing.T) {
	p := packageSessions.WithLabelValues("client")
	n := notifications.WithLabelValues("workout_rescheduled")
	pBefore, nBefore := testutil.ToFloat64(p), testutil.ToFloat64(n)

	RecordPackageSessionConsumed("client")
	RecordNotification("workout_rescheduled")

	assert.Equal(t, pBefore+1, testutil.ToFloat64(p))
	assert.Equal(t, nBefore+1, testutil.ToFloat64(n))
}

func TestRecordTrackingEntry(t *testing.T) {
	c := trackingEntries.WithLabelValues("nutrition")
	before := testutil.ToFloat64(c)
	RecordTrackingEntry("nutrition")
	RecordTrackingEntry("nutrition")
	assert.Equal(t, before+2, testutil.ToFloat64(c))
}
