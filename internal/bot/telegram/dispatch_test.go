package telegram

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitPreservesPerUserOrder(t *testing.T) {
	d := NewDispatcher()

	const events = 200
	var mu sync.Mutex
	var got []int

	for i := 0; i < events; i++ {
		i := i
		d.Submit(1, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	d.Wait()

	if len(got) != events {
		t.Fatalf("expected %d events, got %d", events, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("event %d ran out of order (got %d)", i, v)
		}
	}
}

func TestDistinctUsersRunConcurrently(t *testing.T) {
	d := NewDispatcher()

	release := make(chan struct{})
	otherDone := make(chan struct{})

	// User 1 blocks until user 2's handler has run; this only terminates if
	// the two users are handled on separate goroutines.
	d.Submit(1, func() {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
			t.Error("user 1 handler starved waiting for user 2")
		}
	})
	d.Submit(2, func() {
		close(otherDone)
	})

	select {
	case <-otherDone:
		close(release)
	case <-time.After(5 * time.Second):
		t.Fatal("user 2 handler never ran while user 1 was busy")
	}
	d.Wait()
}

func TestMailboxReuseAfterDrain(t *testing.T) {
	d := NewDispatcher()

	done := make(chan struct{}, 2)
	d.Submit(7, func() { done <- struct{}{} })
	d.Wait()

	// The drained mailbox was reaped; a later event must still be handled.
	d.Submit(7, func() { done <- struct{}{} })
	d.Wait()

	if len(done) != 2 {
		t.Fatalf("expected 2 handled events, got %d", len(done))
	}
}

func TestNoEventLostAcrossDrainAndReap(t *testing.T) {
	d := NewDispatcher()

	// Many goroutines hammering one user keeps the mailbox cycling through
	// full, drained, and reaped states, so blocking sends keep racing the
	// worker's exit. Every accepted event must still run before Wait returns.
	const submitters = 8
	const perSubmitter = 500

	var executed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSubmitter; j++ {
				d.Submit(11, func() { executed.Add(1) })
			}
		}()
	}
	wg.Wait()
	d.Wait()

	if got := executed.Load(); got != int64(submitters*perSubmitter) {
		t.Fatalf("expected %d handled events, got %d", submitters*perSubmitter, got)
	}
}

func TestSubmitDoesNotDeadlockWhenMailboxFull(t *testing.T) {
	d := NewDispatcher()

	gate := make(chan struct{})
	d.Submit(3, func() { <-gate })

	finished := make(chan struct{})
	go func() {
		// Overfill the buffer while the worker is blocked on the gate.
		for i := 0; i < mailboxBuffer*2; i++ {
			d.Submit(3, func() {})
		}
		close(finished)
	}()

	close(gate)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit deadlocked on a full mailbox")
	}
	d.Wait()
}
