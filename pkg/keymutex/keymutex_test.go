package keymutex

import (
	"sync"
	"testing"
	"time"
)

func TestKeyMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	km := New()

	const goroutines = 50
	var counter int

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("user:1")
			defer km.Unlock("user:1")
			// Unsynchronized read-modify-write; only safe under the key lock.
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Errorf("counter = %d, want %d", counter, goroutines)
	}
}

func TestKeyMutex_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	km := New()
	km.Lock("a")
	defer km.Unlock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyMutex_EntriesFreed(t *testing.T) {
	t.Parallel()

	km := New()
	km.Lock("a")
	km.Unlock("a")

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.entries) != 0 {
		t.Errorf("expected 0 retained entries, got %d", len(km.entries))
	}
}

func TestKeyMutex_UnlockUnheldPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on unlocking an unheld key")
		}
	}()

	New().Unlock("nope")
}
