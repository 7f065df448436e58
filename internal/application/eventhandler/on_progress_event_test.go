package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/application/saga"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/messaging"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// Проводит полную цепочку: команда → запись → событие → переоценка.
// Синхронная шина делает порядок детерминированным: обработчик
// стартует строго после того, как запись команды легла в хранилище.
func TestDeferredEvaluation_SeesTriggeringWrite(t *testing.T) {
	store := inmem.NewStore()
	courses := inmem.NewCourseRepository(store)
	goals := inmem.NewGoalRepository(store)
	streaks := inmem.NewStreakRepository(store)
	achievements := inmem.NewAchievementRepository(store)

	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.AsyncMode = false
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer bus.Close()

	flow := saga.NewAchievementFlow(courses, goals, streaks, achievements, bus)
	handler := NewOnProgressEventHandler(flow, nil)
	require.NoError(t, handler.Register(bus))

	record := command.NewRecordActivityHandler(streaks, bus)

	base := time.Date(2025, 6, 2, 10, 0, 0, 0, timeutil.Location())
	for i := 0; i < 7; i++ {
		_, err := record.Handle(context.Background(), command.RecordActivityCommand{
			Kind:      streak.ActivityLesson,
			Timestamp: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	// Семидневная серия видна переоценке, запущенной с седьмой записи.
	unlocked, err := achievements.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)

	titles := make([]string, 0, len(unlocked))
	for i := range unlocked {
		titles = append(titles, unlocked[i].Title)
	}
	assert.Contains(t, titles, "Study Streak")
}

func TestRegister_SubscribesToAllProgressTriggers(t *testing.T) {
	store := inmem.NewStore()
	flow := saga.NewAchievementFlow(
		inmem.NewCourseRepository(store),
		inmem.NewGoalRepository(store),
		inmem.NewStreakRepository(store),
		inmem.NewAchievementRepository(store),
		&nopPublisher{},
	)
	handler := NewOnProgressEventHandler(flow, nil)

	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.AsyncMode = false
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer bus.Close()

	require.NoError(t, handler.Register(bus))

	// Каждое триггерное событие проходит без ошибок даже на пустом
	// состоянии.
	assert.NoError(t, bus.Publish(shared.NewActivityRecordedEvent("u1", "lesson", "", 1)))
	assert.NoError(t, bus.Publish(shared.NewGoalCompletedEvent("u1", "g1", "Goal")))
	assert.NoError(t, bus.Publish(shared.NewCourseChangedEvent(shared.EventCourseUpdated, "u1", "c1", "Course")))
}

type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }
