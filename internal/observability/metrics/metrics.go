package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

var (
	once                       sync.Once
	metricsRouter              *chi.Mux
	pollerDurationHistogram    *prometheus.HistogramVec
	chainClientLatency         *prometheus.HistogramVec
	dbLatency                  *prometheus.HistogramVec
	fallbackHitCounter         prometheus.Counter
	droppedTriggerCounter      prometheus.Counter
	supersededCycleCounter     prometheus.Counter
	eligibilityMismatchCounter prometheus.Counter
	queuePublishErrorCounter   prometheus.Counter
	observedEntitiesGauge      *prometheus.GaugeVec
	snapshotStaleGauge         *prometheus.GaugeVec
	accrualEstimateGauge       *prometheus.GaugeVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of sync poller run durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"poller", "status"},
	)

	chainClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_client_latency_seconds",
			Help:    "Histogram of ledger query durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of snapshot store operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	fallbackHitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallback_hits_total",
			Help: "The total number of cycles served from the fallback store after a failed live read",
		},
	)

	droppedTriggerCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dropped_triggers_total",
			Help: "The total number of sync triggers dropped by cooldown or mutual exclusion",
		},
	)

	supersededCycleCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "superseded_cycles_total",
			Help: "The total number of sync cycles discarded because a newer cycle took over",
		},
	)

	eligibilityMismatchCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eligibility_mismatch_total",
			Help: "The total number of disagreements between chain-exact and display eligibility",
		},
	)

	queuePublishErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_publish_error_total",
			Help: "The total number of errors publishing diagnostic events to the queue",
		},
	)

	observedEntitiesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "observed_entities",
			Help: "Number of entities in the committed snapshot per identity",
		},
		[]string{"address"},
	)

	snapshotStaleGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapshot_stale",
			Help: "Whether the committed snapshot is stale (1) or fresh (0) per identity",
		},
		[]string{"address"},
	)

	accrualEstimateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accrual_estimate",
			Help: "Current extrapolated reward accrual per identity",
		},
		[]string{"address"},
	)

	prometheus.MustRegister(
		pollerDurationHistogram,
		chainClientLatency,
		dbLatency,
		fallbackHitCounter,
		droppedTriggerCounter,
		supersededCycleCounter,
		eligibilityMismatchCounter,
		queuePublishErrorCounter,
		observedEntitiesGauge,
		snapshotStaleGauge,
		accrualEstimateGauge,
	)
}

func RecordChainClientLatency(method string, duration time.Duration, err error) {
	status := Success
	if err != nil {
		status = Error
	}
	chainClientLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func RecordDbLatency(method string, duration time.Duration, err error) {
	status := Success
	if err != nil {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func RecordFallbackHit() {
	fallbackHitCounter.Inc()
}

func RecordDroppedTrigger() {
	droppedTriggerCounter.Inc()
}

func RecordSupersededCycle() {
	supersededCycleCounter.Inc()
}

func RecordEligibilityMismatch() {
	eligibilityMismatchCounter.Inc()
}

func RecordQueuePublishError() {
	queuePublishErrorCounter.Inc()
}

func RecordObservedEntities(address string, count int) {
	observedEntitiesGauge.WithLabelValues(address).Set(float64(count))
}

func RecordSnapshotStale(address string, stale bool) {
	v := 0.0
	if stale {
		v = 1.0
	}
	snapshotStaleGauge.WithLabelValues(address).Set(v)
}

func RecordAccrualEstimate(address string, estimate float64) {
	accrualEstimateGauge.WithLabelValues(address).Set(estimate)
}
