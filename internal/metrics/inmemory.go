package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated               uint64
	UsersUpdated               uint64
	UsersDeleted               uint64
	WebhooksRejected           uint64
	ImagesCreated              uint64
	ImagesUpdated              uint64
	ImagesDeleted              uint64
	ImageListCacheHits         uint64
	ImageListCacheMisses       uint64
	ImageListDurationCount     uint64
	ImageListDurationTotalNs   int64
	CheckoutsStarted           uint64
	CheckoutsFailed            uint64
	TransactionsRecorded       uint64
	TransactionsRecordedFailed uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	usersCreated               uint64
	usersUpdated               uint64
	usersDeleted               uint64
	webhooksRejected           uint64
	imagesCreated              uint64
	imagesUpdated              uint64
	imagesDeleted              uint64
	imageListCacheHits         uint64
	imageListCacheMisses       uint64
	imageListDurationCount     uint64
	imageListDurationTotalNs   int64
	checkoutsStarted           uint64
	checkoutsFailed            uint64
	transactionsRecorded       uint64
	transactionsRecordedFailed uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:               atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:               atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:               atomic.LoadUint64(&m.usersDeleted),
		WebhooksRejected:           atomic.LoadUint64(&m.webhooksRejected),
		ImagesCreated:              atomic.LoadUint64(&m.imagesCreated),
		ImagesUpdated:              atomic.LoadUint64(&m.imagesUpdated),
		ImagesDeleted:              atomic.LoadUint64(&m.imagesDeleted),
		ImageListCacheHits:         atomic.LoadUint64(&m.imageListCacheHits),
		ImageListCacheMisses:       atomic.LoadUint64(&m.imageListCacheMisses),
		ImageListDurationCount:     atomic.LoadUint64(&m.imageListDurationCount),
		ImageListDurationTotalNs:   atomic.LoadInt64(&m.imageListDurationTotalNs),
		CheckoutsStarted:           atomic.LoadUint64(&m.checkoutsStarted),
		CheckoutsFailed:            atomic.LoadUint64(&m.checkoutsFailed),
		TransactionsRecorded:       atomic.LoadUint64(&m.transactionsRecorded),
		TransactionsRecordedFailed: atomic.LoadUint64(&m.transactionsRecordedFailed),
	}
}

// IncUserSynced increments the counter for a user lifecycle event.
func (m *InMemoryRecorder) IncUserSynced(event string) {
	switch event {
	case "created":
		atomic.AddUint64(&m.usersCreated, 1)
	case "updated":
		atomic.AddUint64(&m.usersUpdated, 1)
	case "deleted":
		atomic.AddUint64(&m.usersDeleted, 1)
	}
}

// IncWebhookRejected increments the rejected webhook counter.
func (m *InMemoryRecorder) IncWebhookRejected(source string) {
	atomic.AddUint64(&m.webhooksRejected, 1)
}

// IncImageCreated increments image created counter.
func (m *InMemoryRecorder) IncImageCreated() {
	atomic.AddUint64(&m.imagesCreated, 1)
}

// IncImageUpdated increments image updated counter.
func (m *InMemoryRecorder) IncImageUpdated() {
	atomic.AddUint64(&m.imagesUpdated, 1)
}

// IncImageDeleted increments image deleted counter.
func (m *InMemoryRecorder) IncImageDeleted() {
	atomic.AddUint64(&m.imagesDeleted, 1)
}

// IncImageListCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncImageListCacheHit() {
	atomic.AddUint64(&m.imageListCacheHits, 1)
}

// IncImageListCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncImageListCacheMiss() {
	atomic.AddUint64(&m.imageListCacheMisses, 1)
}

// ObserveImageListDuration records list duration.
func (m *InMemoryRecorder) ObserveImageListDuration(duration time.Duration) {
	atomic.AddUint64(&m.imageListDurationCount, 1)
	atomic.AddInt64(&m.imageListDurationTotalNs, duration.Nanoseconds())
}

// IncCheckoutStarted increments the checkout counter for status.
func (m *InMemoryRecorder) IncCheckoutStarted(status string) {
	if status == "success" {
		atomic.AddUint64(&m.checkoutsStarted, 1)
		return
	}
	atomic.AddUint64(&m.checkoutsFailed, 1)
}

// IncTransactionRecorded increments the transaction counter for status.
func (m *InMemoryRecorder) IncTransactionRecorded(status string) {
	if status == "success" {
		atomic.AddUint64(&m.transactionsRecorded, 1)
		return
	}
	atomic.AddUint64(&m.transactionsRecordedFailed, 1)
}
