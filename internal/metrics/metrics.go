// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity sync metrics
	IncUserSynced(event string) // event: "created", "updated", "deleted"
	IncWebhookRejected(source string)

	// Image metrics
	IncImageCreated()
	IncImageUpdated()
	IncImageDeleted()
	IncImageListCacheHit()
	IncImageListCacheMiss()
	ObserveImageListDuration(duration time.Duration)

	// Billing metrics
	IncCheckoutStarted(status string) // status: "success" or "failed"
	IncTransactionRecorded(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
