package handler

import (
	"fmt"
	"net/http"

	"github.com/leadlens/leadlens/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "leadlens_searches_total{status=\"success\"} %d\n", snap.SearchesSucceeded)
	writeMetric(w, "leadlens_searches_total{status=\"failed\"} %d\n", snap.SearchesFailed)
	writeMetric(w, "leadlens_search_duration_seconds_count %d\n", snap.SearchDurationCount)
	writeMetric(w, "leadlens_search_duration_seconds_sum %.6f\n", float64(snap.SearchDurationTotalNs)/1e9)
	writeMetric(w, "leadlens_search_candidates_total %d\n", snap.CandidatesReturned)
	writeMetric(w, "leadlens_search_duplicates_removed_total %d\n", snap.DuplicatesRemoved)

	writeMetric(w, "leadlens_emails_total{status=\"sent\"} %d\n", snap.EmailsSent)
	writeMetric(w, "leadlens_emails_total{status=\"failed\"} %d\n", snap.EmailsFailed)

	writeMetric(w, "leadlens_exports_generated_total %d\n", snap.ExportsGenerated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
