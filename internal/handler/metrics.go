package handler

import (
	"fmt"
	"net/http"

	"github.com/imaginify/imaginify/internal/metrics"
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

	writeMetric(w, "imaginify_users_synced_total{event=\"created\"} %d\n", snap.UsersCreated)
	writeMetric(w, "imaginify_users_synced_total{event=\"updated\"} %d\n", snap.UsersUpdated)
	writeMetric(w, "imaginify_users_synced_total{event=\"deleted\"} %d\n", snap.UsersDeleted)
	writeMetric(w, "imaginify_webhooks_rejected_total %d\n", snap.WebhooksRejected)

	writeMetric(w, "imaginify_images_created_total %d\n", snap.ImagesCreated)
	writeMetric(w, "imaginify_images_updated_total %d\n", snap.ImagesUpdated)
	writeMetric(w, "imaginify_images_deleted_total %d\n", snap.ImagesDeleted)

	writeMetric(w, "imaginify_image_list_cache_hits_total %d\n", snap.ImageListCacheHits)
	writeMetric(w, "imaginify_image_list_cache_misses_total %d\n", snap.ImageListCacheMisses)
	writeMetric(w, "imaginify_image_list_duration_seconds_count %d\n", snap.ImageListDurationCount)
	writeMetric(w, "imaginify_image_list_duration_seconds_sum %.6f\n", float64(snap.ImageListDurationTotalNs)/1e9)

	writeMetric(w, "imaginify_checkouts_total{status=\"success\"} %d\n", snap.CheckoutsStarted)
	writeMetric(w, "imaginify_checkouts_total{status=\"failed\"} %d\n", snap.CheckoutsFailed)
	writeMetric(w, "imaginify_transactions_recorded_total{status=\"success\"} %d\n", snap.TransactionsRecorded)
	writeMetric(w, "imaginify_transactions_recorded_total{status=\"failed\"} %d\n", snap.TransactionsRecordedFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
