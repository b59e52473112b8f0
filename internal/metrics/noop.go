package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserSynced is a no-op.
func (n *NoopRecorder) IncUserSynced(event string) {}

// IncWebhookRejected is a no-op.
func (n *NoopRecorder) IncWebhookRejected(source string) {}

// IncImageCreated is a no-op.
func (n *NoopRecorder) IncImageCreated() {}

// IncImageUpdated is a no-op.
func (n *NoopRecorder) IncImageUpdated() {}

// IncImageDeleted is a no-op.
func (n *NoopRecorder) IncImageDeleted() {}

// IncImageListCacheHit is a no-op.
func (n *NoopRecorder) IncImageListCacheHit() {}

// IncImageListCacheMiss is a no-op.
func (n *NoopRecorder) IncImageListCacheMiss() {}

// ObserveImageListDuration is a no-op.
func (n *NoopRecorder) ObserveImageListDuration(duration time.Duration) {}

// IncCheckoutStarted is a no-op.
func (n *NoopRecorder) IncCheckoutStarted(status string) {}

// IncTransactionRecorded is a no-op.
func (n *NoopRecorder) IncTransactionRecorded(status string) {}
