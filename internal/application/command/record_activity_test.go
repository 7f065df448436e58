package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

func newStreakFixture() (*RecordActivityHandler, *ResetStreakHandler, *inmem.StreakRepository, *recordingPublisher) {
	store := inmem.NewStore()
	streaks := inmem.NewStreakRepository(store)
	publisher := &recordingPublisher{}
	return NewRecordActivityHandler(streaks, publisher),
		NewResetStreakHandler(streaks, publisher),
		streaks,
		publisher
}

func TestRecordActivity_ExtendsStreakOncePerDay(t *testing.T) {
	record, _, _, publisher := newStreakFixture()
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, timeutil.Location())

	first, err := record.Handle(context.Background(), RecordActivityCommand{
		Kind:      streak.ActivityLesson,
		Timestamp: base,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Current)
	assert.True(t, first.Extended)

	second, err := record.Handle(context.Background(), RecordActivityCommand{
		Kind:      streak.ActivityHomework,
		Timestamp: base.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Current)
	assert.False(t, second.Extended, "same-day activity is absorbed")

	third, err := record.Handle(context.Background(), RecordActivityCommand{
		Kind:      streak.ActivityStudy,
		Timestamp: base.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, third.Current)
	assert.True(t, third.Extended)

	assert.Len(t, publisher.ofType(shared.EventActivityRecorded), 3)
}

func TestRecordActivity_EventCarriesStreakAfterWrite(t *testing.T) {
	record, _, streaks, publisher := newStreakFixture()
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, timeutil.Location())

	_, err := record.Handle(context.Background(), RecordActivityCommand{
		Kind:      streak.ActivityLesson,
		CourseID:  "course-1",
		Timestamp: base,
	})
	require.NoError(t, err)

	events := publisher.ofType(shared.EventActivityRecorded)
	require.Len(t, events, 1)
	event := events[0].(shared.ActivityRecordedEvent)
	assert.Equal(t, "course-1", event.CourseID)

	// The published streak value matches what a fresh read returns:
	// evaluation off this event always sees the landed write.
	s, err := streaks.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, s.Current, event.CurrentStreak)
}

func TestRecordActivity_InvalidKind(t *testing.T) {
	record, _, _, publisher := newStreakFixture()

	_, err := record.Handle(context.Background(), RecordActivityCommand{Kind: "nap"})
	assert.Error(t, err)
	assert.Empty(t, publisher.events)
}

func TestResetStreak_RequiresConfirmation(t *testing.T) {
	_, reset, _, _ := newStreakFixture()

	_, err := reset.Handle(context.Background(), ResetStreakCommand{})
	assert.ErrorIs(t, err, shared.ErrConfirmRequired)
}

func TestResetStreak_KeepsLongest(t *testing.T) {
	record, reset, streaks, publisher := newStreakFixture()
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, timeutil.Location())

	for i := 0; i < 4; i++ {
		_, err := record.Handle(context.Background(), RecordActivityCommand{
			Kind:      streak.ActivityLesson,
			Timestamp: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	s, err := reset.Handle(context.Background(), ResetStreakCommand{Confirm: true})
	require.NoError(t, err)

	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 4, s.Longest)
	assert.Empty(t, s.Activities)
	assert.Len(t, publisher.ofType(shared.EventStreakReset), 1)

	stored, err := streaks.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Current)
	assert.Equal(t, 4, stored.Longest)
}
