package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	m := NewInMemory()

	m.IncUserSynced("created")
	m.IncUserSynced("created")
	m.IncUserSynced("deleted")
	m.IncUserSynced("unknown")
	m.IncWebhookRejected("clerk")
	m.IncImageCreated()
	m.IncImageListCacheHit()
	m.IncImageListCacheMiss()
	m.ObserveImageListDuration(1500 * time.Microsecond)
	m.IncCheckoutStarted("success")
	m.IncCheckoutStarted("failed")
	m.IncTransactionRecorded("success")

	snap := m.Snapshot()

	tests := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"UsersCreated", snap.UsersCreated, 2},
		{"UsersUpdated", snap.UsersUpdated, 0},
		{"UsersDeleted", snap.UsersDeleted, 1},
		{"WebhooksRejected", snap.WebhooksRejected, 1},
		{"ImagesCreated", snap.ImagesCreated, 1},
		{"ImageListCacheHits", snap.ImageListCacheHits, 1},
		{"ImageListCacheMisses", snap.ImageListCacheMisses, 1},
		{"ImageListDurationCount", snap.ImageListDurationCount, 1},
		{"CheckoutsStarted", snap.CheckoutsStarted, 1},
		{"CheckoutsFailed", snap.CheckoutsFailed, 1},
		{"TransactionsRecorded", snap.TransactionsRecorded, 1},
		{"TransactionsRecordedFailed", snap.TransactionsRecordedFailed, 0},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if snap.ImageListDurationTotalNs != 1_500_000 {
		t.Errorf("ImageListDurationTotalNs = %d", snap.ImageListDurationTotalNs)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncUserSynced("created")
	r.IncCheckoutStarted("failed")
	r.ObserveImageListDuration(time.Second)
}
