package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts fetch cycles per source, labeled by outcome.
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polytemp_source_fetches_total",
		Help: "Fetch cycles per source, labeled by outcome (ok or error).",
	}, []string{"source", "outcome"})

	// FetchDuration observes fetch cycle latency per source.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polytemp_fetch_duration_seconds",
		Help:    "Fetch cycle latency per source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// LastSuccess tracks the unix time of the last successful fetch.
	LastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polytemp_last_success_timestamp_seconds",
		Help: "Unix time of the last successful fetch per source.",
	}, []string{"source"})

	// PersistsTotal counts persistence writes per table.
	PersistsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polytemp_persists_total",
		Help: "Persistence writes, labeled by table and outcome (ok or error).",
	}, []string{"table", "outcome"})

	// DayHigh publishes the running whole-degree day high.
	DayHigh = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polytemp_day_high_celsius",
		Help: "Running whole-degree day high per station and source.",
	}, []string{"station", "source"})

	// WSClients gauges connected dashboard websocket clients.
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polytemp_ws_clients",
		Help: "Connected dashboard websocket clients.",
	})

	// BuildInfo carries build metadata, always 1.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polytemp_build_info",
		Help: "Build metadata, value is always 1.",
	}, []string{"version", "commit"})
)

// RecordFetch records one fetch cycle for a source.
func RecordFetch(source string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	FetchesTotal.WithLabelValues(source, outcome).Inc()
	FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err == nil {
		LastSuccess.WithLabelValues(source).SetToCurrentTime()
	}
}

// RecordPersist records one persistence write.
func RecordPersist(table string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PersistsTotal.WithLabelValues(table, outcome).Inc()
}

// SetDayHigh publishes the running day high for a station and source.
func SetDayHigh(station, source string, highC float64) {
	DayHigh.WithLabelValues(station, source).Set(highC)
}

// SetBuildInfo publishes build metadata.
func SetBuildInfo(version, commit string) {
	BuildInfo.WithLabelValues(version, commit).Set(1)
}
