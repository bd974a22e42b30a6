package scan

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Dispatcher is the single ingestion point for inbound card scans. The
// transport's message handler produces into it; whichever workflow is waiting
// consumes from it. Waiters are session-scoped one-shot handles resolved in
// strict registration order, and events that arrive with no waiter are
// buffered FIFO, so scan s1 always pairs with the workflow that started
// waiting first.
type Dispatcher struct {
	mu      sync.Mutex
	waiters []*waiter
	backlog []string
}

type waiter struct {
	id uuid.UUID
	ch chan string // buffered, one-shot
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Deliver hands an inbound scan payload to the earliest registered waiter,
// or buffers it when nobody is waiting. Safe to call from the transport's
// network goroutine.
func (d *Dispatcher) Deliver(payload string) {
	payload = strings.TrimSpace(payload)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.waiters) == 0 {
		d.backlog = append(d.backlog, payload)
		log.Infof("scan buffered, no waiter (backlog %d)", len(d.backlog))
		return
	}

	w := d.waiters[0]
	d.waiters = d.waiters[1:]
	w.ch <- payload
}

// Wait blocks until the next scan arrives or ctx is done. A waiter that gives
// up is removed; if its event raced in anyway, the event goes back to the
// front of the backlog so no scan is lost.
func (d *Dispatcher) Wait(ctx context.Context) (string, error) {
	w := &waiter{
		id: uuid.New(),
		ch: make(chan string, 1),
	}

	d.mu.Lock()
	if len(d.backlog) > 0 {
		payload := d.backlog[0]
		d.backlog = d.backlog[1:]
		d.mu.Unlock()
		return payload, nil
	}
	d.waiters = append(d.waiters, w)
	d.mu.Unlock()

	select {
	case payload := <-w.ch:
		return payload, nil
	case <-ctx.Done():
		d.abandon(w)
		return "", ctx.Err()
	}
}

// Pending reports how many waiters are currently blocked.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

// Buffered reports how many scans arrived with no waiter.
func (d *Dispatcher) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.backlog)
}

func (d *Dispatcher) abandon(w *waiter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, cur := range d.waiters {
		if cur.id == w.id {
			d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
			return
		}
	}

	// already resolved: the delivery raced the cancellation, pass the scan
	// on to the next waiter or put it back at the front of the backlog
	select {
	case payload := <-w.ch:
		if len(d.waiters) > 0 {
			next := d.waiters[0]
			d.waiters = d.waiters[1:]
			next.ch <- payload
		} else {
			d.backlog = append([]string{payload}, d.backlog...)
		}
		log.Warnf("scan rerouted after abandoned wait %s", w.id)
	default:
	}
}
