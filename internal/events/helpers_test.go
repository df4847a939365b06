package events

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		InitialWorkerCount:      2,
		WorkerMin:               1,
		WorkerMax:               4,
		ScaleInterval:           50 * time.Millisecond,
		ScaleUpBacklogPerWorker: 100,
		ScaleDownIdleTicks:      6,
		QueueHighWatermark:      5000,
	}
}

// recordingPublisher collects events, optionally sleeping or failing.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderPlaced
	delay  time.Duration
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.OrderPlaced) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
