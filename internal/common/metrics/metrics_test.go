package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"copro-workers/internal/models"
)

func TestStartJob_TracksActiveJobs(t *testing.T) {
	done := StartJob("metrics-test")
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues("metrics-test")))

	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues("metrics-test")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(WorkerJobDuration), 1)
}

func TestJobCounters(t *testing.T) {
	JobCompleted("metrics-counter-test")
	JobCompleted("metrics-counter-test")
	JobFailed("metrics-counter-test", "CONDO_NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-counter-test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-counter-test", "CONDO_NOT_FOUND")))
}

func TestObserveScore(t *testing.T) {
	before := testutil.CollectAndCount(CondoGlobalScore)
	ObserveScore(models.ScoreResult{Global: 61, Confidence: 23})
	ObserveRenovation(models.RenovationEstimate{TotalMax: 1320000})

	assert.Equal(t, before, testutil.CollectAndCount(CondoGlobalScore), "histogram stays a single series")
}

func TestNotificationsSent(t *testing.T) {
	NotificationsSent.WithLabelValues("email", "sent").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(NotificationsSent.WithLabelValues("email", "sent")))
}
