package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(15 * time.Minute)
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(15*time.Minute), s.Next(base))
	assert.Equal(t, "@every 15m0s", s.String())
}

func TestDailySchedule_Next(t *testing.T) {
	s := NewDailySchedule(4, 30)

	// Before today's slot: fires today.
	early := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 4, 30, 0, 0, time.UTC), s.Next(early))

	// After today's slot: rolls to tomorrow.
	late := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 3, 4, 30, 0, 0, time.UTC), s.Next(late))

	// Exactly at the slot: also tomorrow, a run never triggers itself.
	exact := time.Date(2025, 6, 2, 4, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 3, 4, 30, 0, 0, time.UTC), s.Next(exact))
}

type countingJob struct {
	runs int
}

func (j *countingJob) Name() string        { return "counting" }
func (j *countingJob) Description() string { return "test job" }
func (j *countingJob) Run(context.Context) error {
	j.runs++
	return nil
}

func TestScheduler_RegisterAndRunNow(t *testing.T) {
	s := New(Config{})
	job := &countingJob{}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))
	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Hour)), ErrJobAlreadyExists)

	result, err := s.RunNow(context.Background(), "counting")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, job.runs)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := New(Config{})

	assert.ErrorIs(t, s.Stop(), ErrNotRunning)
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}
