package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore(8)
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	// should start empty
	if got := store.Len(); got != 0 {
		t.Errorf("Len() = %v, want 0", got)
	}
	if got := len(store.Snapshot()); got != 0 {
		t.Errorf("Snapshot() = %v items, want 0", got)
	}
	if got := store.Capacity(); got != 8 {
		t.Errorf("Capacity() = %v, want 8", got)
	}
}

func TestNewMemoryStore_InvalidCapacityFallsBack(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		store := NewMemoryStore(capacity)
		if got := store.Capacity(); got != DefaultCapacity {
			t.Errorf("NewMemoryStore(%d).Capacity() = %v, want %v", capacity, got, DefaultCapacity)
		}
	}
}

func TestMemoryStore_Record(t *testing.T) {
	store := NewMemoryStore(8)

	before := time.Now()
	p := store.Record("heartbeat")
	after := time.Now()

	if p.Reason != "heartbeat" {
		t.Errorf("Record().Reason = %v, want %v", p.Reason, "heartbeat")
	}
	if p.ReceivedAt.Before(before) || p.ReceivedAt.After(after) {
		t.Errorf("Record().ReceivedAt = %v, want between %v and %v", p.ReceivedAt, before, after)
	}

	all := store.Snapshot()
	if len(all) != 1 {
		t.Fatalf("Snapshot() = %v items, want 1", len(all))
	}
	if all[0].Reason != "heartbeat" {
		t.Errorf("Snapshot()[0].Reason = %v, want %v", all[0].Reason, "heartbeat")
	}
}

func TestMemoryStore_RecordEmptyReason(t *testing.T) {
	store := NewMemoryStore(8)

	store.Record("")

	if got := store.Len(); got != 1 {
		t.Errorf("Len() = %v, want 1", got)
	}
}

func TestMemoryStore_MostRecentFirst(t *testing.T) {
	store := NewMemoryStore(8)

	store.Record("first")
	store.Record("second")
	store.Record("third")

	all := store.Snapshot()
	want := []string{"third", "second", "first"}
	if len(all) != len(want) {
		t.Fatalf("Snapshot() = %v items, want %v", len(all), len(want))
	}
	for i, reason := range want {
		if all[i].Reason != reason {
			t.Errorf("Snapshot()[%d].Reason = %v, want %v", i, all[i].Reason, reason)
		}
	}
}

func TestMemoryStore_CapacityNeverExceeded(t *testing.T) {
	store := NewMemoryStore(8)

	for i := 0; i < 20; i++ {
		store.Record(fmt.Sprintf("r%d", i))
		if got := store.Len(); got > 8 {
			t.Fatalf("Len() = %v after %d records, want <= 8", got, i+1)
		}
	}

	if got := store.Len(); got != 8 {
		t.Errorf("Len() = %v after 20 records, want exactly 8", got)
	}
}

func TestMemoryStore_EvictsOldestFirst(t *testing.T) {
	store := NewMemoryStore(8)

	// 10 records into a capacity-8 history: r0 and r1 are evicted
	for i := 0; i < 10; i++ {
		store.Record(fmt.Sprintf("r%d", i))
	}

	all := store.Snapshot()
	want := []string{"r9", "r8", "r7", "r6", "r5", "r4", "r3", "r2"}
	if len(all) != len(want) {
		t.Fatalf("Snapshot() = %v items, want %v", len(all), len(want))
	}
	for i, reason := range want {
		if all[i].Reason != reason {
			t.Errorf("Snapshot()[%d].Reason = %v, want %v", i, all[i].Reason, reason)
		}
	}
}

func TestMemoryStore_RepeatedReasonsAreDistinct(t *testing.T) {
	store := NewMemoryStore(8)

	store.Record("same")
	store.Record("same")

	if got := store.Len(); got != 2 {
		t.Errorf("Len() = %v, want 2 (identical reasons are distinct events)", got)
	}
}

func TestMemoryStore_SnapshotIsACopy(t *testing.T) {
	store := NewMemoryStore(8)
	store.Record("original")

	snap := store.Snapshot()
	snap[0].Reason = "mutated"

	if got := store.Snapshot()[0].Reason; got != "original" {
		t.Errorf("Snapshot()[0].Reason = %v after mutating a previous snapshot, want %v", got, "original")
	}
}

func TestMemoryStore_SnapshotDoesNotMutate(t *testing.T) {
	store := NewMemoryStore(8)
	store.Record("a")
	store.Record("b")

	for i := 0; i < 10; i++ {
		_ = store.Snapshot()
	}

	all := store.Snapshot()
	if len(all) != 2 {
		t.Fatalf("Snapshot() = %v items after repeated reads, want 2", len(all))
	}
	if all[0].Reason != "b" || all[1].Reason != "a" {
		t.Errorf("Snapshot() order changed after repeated reads: %v, %v", all[0].Reason, all[1].Reason)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore(8)

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// record should send to subscriber
	go func() {
		store.Record("heartbeat")
	}()

	select {
	case p := <-ch:
		if p.Reason != "heartbeat" {
			t.Errorf("received Reason = %v, want %v", p.Reason, "heartbeat")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive ping")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore(8)

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	// record should fan out to all subscribers
	go func() {
		store.Record("heartbeat")
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 pings", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore(8)

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore(8)

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	done := make(chan bool)

	go func() {
		// this should not block even though the subscriber is not reading
		for i := 0; i < 200; i++ {
			store.Record("heartbeat")
		}
		done <- true
	}()

	select {
	case <-done:
		// expected - records completed without blocking
	case <-time.After(2 * time.Second):
		t.Error("Record() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(8)

	var wg sync.WaitGroup
	numGoroutines := 10
	numOps := 100

	// concurrent records
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				store.Record(fmt.Sprintf("g%d-%d", id, j))
			}
		}(i)
	}

	// concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				snap := store.Snapshot()
				if len(snap) > 8 {
					t.Errorf("Snapshot() = %v items, want <= 8", len(snap))
					return
				}
			}
		}()
	}

	// concurrent subscribe/unsubscribe
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	if got := store.Len(); got != 8 {
		t.Errorf("Len() = %v after concurrent records, want 8", got)
	}
}

func TestMemoryStore_OrderingMatchesClock(t *testing.T) {
	store := NewMemoryStore(8)

	// deterministic clock so ordering can be checked against timestamps
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}

	for i := 0; i < 5; i++ {
		store.Record(fmt.Sprintf("r%d", i))
	}

	all := store.Snapshot()
	for i := 1; i < len(all); i++ {
		if !all[i].ReceivedAt.Before(all[i-1].ReceivedAt) {
			t.Errorf("Snapshot()[%d].ReceivedAt = %v, want before Snapshot()[%d] = %v",
				i, all[i].ReceivedAt, i-1, all[i-1].ReceivedAt)
		}
	}
}
