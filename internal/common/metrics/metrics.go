package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"copro-workers/internal/models"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of jobs currently being processed",
		},
		[]string{"task_type"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "data_query_duration_seconds",
			Help:    "Duration of registry and search queries by query type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Risk alert deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)

	CondoGlobalScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "condo_global_score",
		Help:    "Distribution of computed global health scores",
		Buckets: prometheus.LinearBuckets(10, 10, 10),
	})

	CondoConfidenceIndex = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "condo_confidence_index",
		Help:    "Distribution of confidence indexes attached to scores",
		Buckets: prometheus.LinearBuckets(10, 10, 10),
	})

	CondoRenovationTotalMax = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "condo_renovation_total_max_euros",
		Help:    "Upper bound of estimated renovation costs",
		Buckets: prometheus.ExponentialBuckets(10000, 2.5, 8),
	})

	CondoRiskAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "condo_risk_alerts_total",
		Help: "Enrichment runs that raised a risk alert",
	})
)

// StartJob marks a job active and returns the func that records its
// duration once processing ends.
func StartJob(taskType string) func() {
	start := time.Now()
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return func() {
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}
}

func JobCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func JobFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func ObserveScore(score models.ScoreResult) {
	CondoGlobalScore.Observe(float64(score.Global))
	CondoConfidenceIndex.Observe(float64(score.Confidence))
}

func ObserveRenovation(estimate models.RenovationEstimate) {
	CondoRenovationTotalMax.Observe(float64(estimate.TotalMax))
}
