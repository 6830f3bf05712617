// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Accounting runs
	RunsTotal            *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	StreamPeriodsValued  prometheus.Counter
	TransfersValued      prometheus.Counter
	TransfersMerged      prometheus.Counter
	VirtualPeriodsOutput prometheus.Counter

	// Pricing
	PriceFetchesTotal *prometheus.CounterVec
	TokensUnresolved  prometheus.Counter
	CoinListRefreshes *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	ArchivedQuotes    prometheus.Counter

	// HTTP API
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LiveConnections     prometheus.Gauge

	// Ledger sync
	SyncedRecords *prometheus.CounterVec
	SyncErrors    *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun  prometheus.Gauge
	LastSuccessfulSync prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a new Metrics instance registered on reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "stream_accounting"
	}
	f := promauto.With(reg)

	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "runs_total",
			Help:      "Total number of accounting runs by status",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "run_duration_seconds",
			Help:      "Accounting run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		StreamPeriodsValued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "stream_periods_valued_total",
			Help:      "Total number of stream periods virtualized and valued",
		}),
		TransfersValued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "transfers_valued_total",
			Help:      "Total number of transfers normalized and valued",
		}),
		TransfersMerged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "transfers_merged_total",
			Help:      "Total number of transfers folded into a stream bucket",
		}),
		VirtualPeriodsOutput: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounting",
			Name:      "virtual_periods_total",
			Help:      "Total number of virtual periods produced",
		}),

		PriceFetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetches_total",
			Help:      "Total number of coin price fetches by source",
		}, []string{"source"}),
		TokensUnresolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "tokens_unresolved_total",
			Help:      "Total number of tokens without a coin id",
		}),
		CoinListRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "coin_list_refreshes_total",
			Help:      "Total number of coin list refreshes by status",
		}, []string{"status"}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "provider_latency_seconds",
			Help:      "Price provider call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ArchivedQuotes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "archived_quotes_total",
			Help:      "Total number of provider quotes written to the archive",
		}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		LiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "live_connections",
			Help:      "Number of open live feed connections",
		}),

		SyncedRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_stored_total",
			Help:      "Total number of ledger records stored by kind",
		}, []string{"kind"}),
		SyncErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "errors_total",
			Help:      "Total number of ledger sync errors by chain",
		}, []string{"chain_id"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful accounting run",
		}),
		LastSuccessfulSync: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sync_timestamp",
			Help:      "Unix timestamp of last successful ledger sync",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RunStats is what a finished accounting run reports.
type RunStats struct {
	StreamPeriods  int
	Transfers      int
	Merged         int
	VirtualPeriods int
}

// RecordRun records an accounting run. A nil error counts as success.
func RecordRun(stats RunStats, durationSeconds float64, finishedAt int64, err error) {
	DefaultMetrics.RunDuration.Observe(durationSeconds)
	if err != nil {
		DefaultMetrics.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	DefaultMetrics.RunsTotal.WithLabelValues("ok").Inc()
	DefaultMetrics.StreamPeriodsValued.Add(float64(stats.StreamPeriods))
	DefaultMetrics.TransfersValued.Add(float64(stats.Transfers))
	DefaultMetrics.TransfersMerged.Add(float64(stats.Merged))
	DefaultMetrics.VirtualPeriodsOutput.Add(float64(stats.VirtualPeriods))
	DefaultMetrics.LastSuccessfulRun.Set(float64(finishedAt))
}

// RecordPriceFetch records where a coin's prices came from: "provider", "archive" or "none".
func RecordPriceFetch(source string) {
	DefaultMetrics.PriceFetchesTotal.WithLabelValues(source).Inc()
}

// RecordUnresolvedTokens counts tokens that could not be mapped to a coin id.
func RecordUnresolvedTokens(n int) {
	DefaultMetrics.TokensUnresolved.Add(float64(n))
}

// RecordCoinListRefresh records a coin list load.
func RecordCoinListRefresh(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.CoinListRefreshes.WithLabelValues(status).Inc()
}

// RecordProviderLatency records a price provider call.
func RecordProviderLatency(method string, seconds float64) {
	DefaultMetrics.ProviderLatency.WithLabelValues(method).Observe(seconds)
}

// RecordArchivedQuotes counts quotes written to the archive.
func RecordArchivedQuotes(n int) {
	DefaultMetrics.ArchivedQuotes.Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, code string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// LiveConnectionOpened tracks a new live feed socket.
func LiveConnectionOpened() { DefaultMetrics.LiveConnections.Inc() }

// LiveConnectionClosed tracks a closed live feed socket.
func LiveConnectionClosed() { DefaultMetrics.LiveConnections.Dec() }

// RecordSynced counts ledger records stored by a sync, kind is "stream_period" or "transfer".
func RecordSynced(kind string, n int) {
	DefaultMetrics.SyncedRecords.WithLabelValues(kind).Add(float64(n))
}

// RecordSyncError counts a failed chain sync.
func RecordSyncError(chainID string) {
	DefaultMetrics.SyncErrors.WithLabelValues(chainID).Inc()
}

// RecordSyncFinished marks a successful sync.
func RecordSyncFinished(finishedAt int64) {
	DefaultMetrics.LastSuccessfulSync.Set(float64(finishedAt))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
