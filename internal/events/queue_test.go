package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

func TestQueueRejectsWhenFull(t *testing.T) {
	q := NewQueue(3)
	accepted := 0
	for i := 0; i < 1000; i++ {
		if q.Enqueue(model.OrderPlaced{OrderID: "x", Total: float64(i)}) {
			accepted++
		}
	}
	assert.Equal(t, 3, accepted)
	assert.Equal(t, 3, q.BacklogSize())
	assert.EqualValues(t, 997, q.Rejected())

	// Taking one frees exactly one slot.
	<-q.Out()
	q.MarkProcessed()
	assert.True(t, q.Enqueue(model.OrderPlaced{OrderID: "y"}))
	assert.False(t, q.Enqueue(model.OrderPlaced{OrderID: "z"}))
}

func TestQueueSequenceHasNoGapsAfterRejection(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.Enqueue(model.OrderPlaced{OrderID: "a"}))
	require.True(t, q.Enqueue(model.OrderPlaced{OrderID: "b"}))
	require.False(t, q.Enqueue(model.OrderPlaced{OrderID: "rejected"}))
	first := <-q.Out()
	require.True(t, q.Enqueue(model.OrderPlaced{OrderID: "c"}))
	second := <-q.Out()
	third := <-q.Out()
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{first.Sequence, second.Sequence, third.Sequence})
	assert.Equal(t, "c", third.OrderID)
}

func TestQueueDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewQueue(0).Capacity())
}

func TestQueueShutdownIntake(t *testing.T) {
	q := NewQueue(1)
	q.CloseIntake()
	require.True(t, q.IsShuttingDown())
	assert.False(t, q.Enqueue(model.OrderPlaced{OrderID: "x"}))
	assert.Zero(t, q.BacklogSize())
}

func TestManagerDrainPublishesAllInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.InitialWorkerCount = 1
	cfg.WorkerMax = 1
	pub := &recordingPublisher{}
	mgr := NewManager(cfg, NewQueue(128), pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()
	for i := 0; i < 100; i++ {
		require.True(t, mgr.Notify(model.OrderPlaced{OrderID: "o"}), "notify rejected at %d", i)
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	require.True(t, mgr.DrainUntil(ctxDrain), "drain timeout")
	require.Equal(t, 100, pub.count())
	for i, ev := range pub.events {
		assert.Equal(t, uint64(i+1), ev.Sequence)
	}
}

func TestManagerFullQueueDropsEvents(t *testing.T) {
	cfg := testConfig()
	cfg.InitialWorkerCount = 1
	cfg.WorkerMax = 1
	// A stalled sink keeps the single worker busy so the queue fills.
	pub := &recordingPublisher{delay: 200 * time.Millisecond}
	mgr := NewManager(cfg, NewQueue(4), pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	accepted := 0
	for i := 0; i < 50; i++ {
		if mgr.Notify(model.OrderPlaced{OrderID: "o"}) {
			accepted++
		}
	}
	assert.LessOrEqual(t, accepted, 5)
	assert.LessOrEqual(t, mgr.BacklogSize(), 4)
	assert.EqualValues(t, 50-accepted, mgr.Rejected())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	require.True(t, mgr.DrainUntil(ctxDrain))
	assert.Equal(t, accepted, pub.count())
}

func TestManagerPublishFailureStillDrains(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	mgr := NewManager(testConfig(), NewQueue(16), pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()
	for i := 0; i < 10; i++ {
		require.True(t, mgr.Notify(model.OrderPlaced{OrderID: "o"}))
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	require.True(t, mgr.DrainUntil(ctxDrain), "drain timeout")
	enq, proc, backlog, inflight := mgr.QueueStats()
	assert.EqualValues(t, 10, enq)
	assert.EqualValues(t, 10, proc)
	assert.Zero(t, backlog)
	assert.Zero(t, inflight)
}

func TestManagerCloseIntakeRejectsNotify(t *testing.T) {
	mgr := NewManager(testConfig(), NewQueue(4), &recordingPublisher{})
	mgr.CloseIntake()
	require.True(t, mgr.IsShuttingDown())
	assert.False(t, mgr.Notify(model.OrderPlaced{OrderID: "late"}))
}
