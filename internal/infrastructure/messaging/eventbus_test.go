package messaging

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestPublish_DeliversToSubscribedType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var got []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventActivityRecorded, func(e shared.Event) error {
		got = append(got, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "lesson", "", 1)))
	require.NoError(t, bus.Publish(shared.NewGoalCompletedEvent("u1", "g1", "Goal")))

	assert.Equal(t, []shared.EventType{shared.EventActivityRecorded}, got)
}

func TestPublish_SubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "lesson", "", 1)))
	require.NoError(t, bus.Publish(shared.NewStreakResetEvent("u1", 3, 5)))

	assert.Equal(t, 2, count)
}

func TestPublish_SyncHandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventGoalCompleted, func(e shared.Event) error {
		return errors.New("boom")
	}))

	assert.NoError(t, bus.Publish(shared.NewGoalCompletedEvent("u1", "g1", "Goal")))
}

func TestPublish_AsyncCompletesBeforeClose(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	var handled atomic.Int64
	var wg sync.WaitGroup
	wg.Add(10)
	require.NoError(t, bus.Subscribe(shared.EventActivityRecorded, func(e shared.Event) error {
		defer wg.Done()
		handled.Add(1)
		return nil
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "lesson", "", i)))
	}

	wg.Wait()
	require.NoError(t, bus.Close())
	assert.Equal(t, int64(10), handled.Load())
}

func TestPublish_AfterCloseRejected(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewGoalCompletedEvent("u1", "g1", "Goal"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventGoalCompleted, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestMetrics_CountsPublishes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventActivityRecorded, func(shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "lesson", "", 1)))
	require.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "exam", "", 1)))

	metrics := bus.Metrics()
	require.NotNil(t, metrics)
	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(2), snapshot.TotalPublished)
	assert.Equal(t, int64(2), snapshot.TotalHandled)
	assert.Equal(t, int64(2), snapshot.PublishedByType[shared.EventActivityRecorded])
	assert.Zero(t, snapshot.TotalFailures)
}
