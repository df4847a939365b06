package events

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// publishTimeout bounds a single delivery attempt.
const publishTimeout = 5 * time.Second

// Manager runs the workers that publish queued events and scales their
// number with the backlog.
type Manager struct {
	cfg    config.Config
	q      *Queue
	pub    Publisher
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager delivering events from q to pub.
func NewManager(cfg config.Config, q *Queue, pub Publisher) *Manager {
	return &Manager{cfg: cfg, q: q, pub: pub}
}

// Start begins processing and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.addWorkers(m.cfg.InitialWorkerCount)
	go m.scaler()
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.ScaleUpBacklogPerWorker && wc < m.cfg.WorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= m.cfg.ScaleDownIdleTicks && wc > m.cfg.WorkerMin {
					m.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("event_workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.workerCancels) {
		n = len(m.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := m.workerCancels[len(m.workerCancels)-1]
		m.workerCancels = m.workerCancels[:len(m.workerCancels)-1]
		c()
	}
	obs.Logger.Info("event_workers_scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.q.Out():
			m.deliver(ev)
			m.q.MarkProcessed()
		}
	}
}

// deliver publishes once; failures are logged and counted, not retried.
func (m *Manager) deliver(ev model.OrderPlaced) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := m.pub.Publish(ctx, ev); err != nil {
		obs.Metrics.EventsFailed.Inc()
		obs.Logger.Error("order_event_publish_failed", "order_id", ev.OrderID, "sequence", ev.Sequence, "error", err)
		return
	}
	obs.Metrics.EventsPublished.Inc()
}

// Notify queues ev for publishing. It returns false when the event was not
// accepted; the order that produced it is unaffected.
func (m *Manager) Notify(ev model.OrderPlaced) bool {
	if m.q.Enqueue(ev) {
		return true
	}
	if !m.q.IsShuttingDown() {
		obs.Logger.Warn("event_queue_full", "order_id", ev.OrderID, "capacity", m.q.Capacity())
	}
	return false
}

func (m *Manager) BacklogSize() int { return m.q.BacklogSize() }

func (m *Manager) Rejected() uint64 { return m.q.Rejected() }

func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

func (m *Manager) CloseIntake() { m.q.CloseIntake() }

func (m *Manager) QueueStats() (enq, proc uint64, backlog, inflight int) {
	return m.q.Stats()
}

// DrainUntil blocks until every accepted event was processed or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, _ := m.q.Stats()
		if backlog == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
