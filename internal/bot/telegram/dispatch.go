package telegram

import "sync"

const mailboxBuffer = 16

// Dispatcher serializes event handling per user while letting distinct
// users proceed in parallel. Each active user gets a mailbox goroutine that
// drains events in arrival order; the next event for a user never starts
// before the previous handler, external call included, has returned. A
// mailbox goroutine exits once every accepted event has run.
type Dispatcher struct {
	mu        sync.Mutex
	mailboxes map[int64]*mailbox
	wg        sync.WaitGroup
}

// mailbox carries a user's queued events. pending counts events accepted by
// Submit but not yet completed; it is guarded by Dispatcher.mu and keeps the
// worker from reaping the mailbox while a sender is still delivering into
// its channel.
type mailbox struct {
	ch      chan func()
	pending int
}

// NewDispatcher returns an idle dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{mailboxes: make(map[int64]*mailbox)}
}

// Submit queues fn on the user's mailbox, spawning one if needed. Events
// submitted for the same user run strictly in submission order.
func (d *Dispatcher) Submit(userID int64, fn func()) {
	d.mu.Lock()
	box, ok := d.mailboxes[userID]
	if !ok {
		box = &mailbox{ch: make(chan func(), mailboxBuffer)}
		d.mailboxes[userID] = box
		d.wg.Add(1)
		go d.run(userID, box)
	}
	box.pending++

	select {
	case box.ch <- fn:
		d.mu.Unlock()
	default:
		// Buffer full: pending was raised under the lock, so the worker
		// cannot reap this mailbox until the blocking send lands and runs.
		d.mu.Unlock()
		box.ch <- fn
	}
}

// run drains a user's mailbox. The worker exits only when pending is zero,
// observed under the same lock Submit raises it with, so an accepted event
// is always received before its mailbox can be reaped.
func (d *Dispatcher) run(userID int64, box *mailbox) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if box.pending == 0 {
			delete(d.mailboxes, userID)
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		fn := <-box.ch
		fn()

		d.mu.Lock()
		box.pending--
		d.mu.Unlock()
	}
}

// Wait blocks until every in-flight handler has finished. Call only after
// the update source has stopped submitting.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
