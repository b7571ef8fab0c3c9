package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "report_build_duration_seconds",
		Help: "Time to build one activity report (cache misses only)",
	})
	ReportsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Reports rendered and returned to callers",
	})
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_cache_hits_total",
		Help: "Report cache hits",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_cache_misses_total",
		Help: "Report cache misses",
	})
	DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "archive_download_duration_seconds",
		Help: "Time to download one hourly archive partition",
	})
	WriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "warehouse_write_duration_seconds",
		Help: "Time to insert one batch into the event warehouse",
	})
	RecordsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_inserted_records_total",
		Help: "Event documents inserted into the warehouse",
	})
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_report_errors_total",
		Help: "Errors by type",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		ReportBuildDuration,
		ReportsGenerated,
		CacheHits,
		CacheMisses,
		DownloadDuration,
		WriteDuration,
		RecordsInserted,
		ErrorsTotal,
	)
}

func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
