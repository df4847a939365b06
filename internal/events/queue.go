// Package events delivers order-placed notifications to a publisher through
// a bounded in-memory queue drained by an autoscaling pool of workers.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// DefaultCapacity is used when NewQueue is given a non-positive capacity.
const DefaultCapacity = 5000

// Queue holds accepted events until a worker takes them. It never grows past
// its capacity: a full queue rejects new events instead of buffering them.
type Queue struct {
	mu      sync.Mutex
	pending chan model.OrderPlaced
	seq     Sequencer
	closed  atomic.Bool

	enqueued  atomic.Uint64
	rejected  atomic.Uint64
	processed atomic.Uint64
}

// NewQueue creates a Queue that holds at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{pending: make(chan model.OrderPlaced, capacity)}
}

// Enqueue stamps ev with the next sequence number and queues it. It never
// blocks; it returns false when intake is closed or the queue is full, and
// a rejected event consumes no sequence number.
func (q *Queue) Enqueue(ev model.OrderPlaced) bool {
	if q.closed.Load() {
		q.rejected.Add(1)
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == cap(q.pending) {
		q.rejected.Add(1)
		return false
	}
	ev.Sequence = q.seq.Next()
	// Producers hold mu and consumers only drain, so this send cannot block.
	q.pending <- ev
	q.enqueued.Add(1)
	return true
}

func (q *Queue) Out() <-chan model.OrderPlaced { return q.pending }

func (q *Queue) Capacity() int { return cap(q.pending) }

// BacklogSize returns the number of events waiting for a worker.
func (q *Queue) BacklogSize() int { return len(q.pending) }

func (q *Queue) MarkProcessed() { q.processed.Add(1) }

func (q *Queue) Rejected() uint64 { return q.rejected.Load() }

// Stats returns counters and sizes for observability. Accepted events still
// being published count as enqueued but not processed.
func (q *Queue) Stats() (enq, proc uint64, backlog, inflight int) {
	enq = q.enqueued.Load()
	proc = q.processed.Load()
	backlog = q.BacklogSize()
	inflight = int(enq-proc) - backlog
	if inflight < 0 {
		inflight = 0
	}
	return enq, proc, backlog, inflight
}

// CloseIntake rejects future enqueues.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

func (q *Queue) IsShuttingDown() bool { return q.closed.Load() }
