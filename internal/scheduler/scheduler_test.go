package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := New(time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleEvery("rotate", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := New(time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleEvery("rotate", 0, func() {})
		require.Error(t, err)
	})
}

func TestScheduler_RunsTask(t *testing.T) {
	s, err := New(time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	var ticks atomic.Int32
	_, err = s.ScheduleEvery("tick", 10*time.Millisecond, func() {
		ticks.Add(1)
	})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestScheduler_PanickingTaskKeepsTicking(t *testing.T) {
	s, err := New(time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	var runs atomic.Int32
	_, err = s.ScheduleEvery("flaky", 10*time.Millisecond, func() {
		runs.Add(1)
		panic("single tick failure")
	})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestScheduler_UpdateInterval(t *testing.T) {
	s, err := New(time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	var ticks atomic.Int32
	task := func() { ticks.Add(1) }

	id, err := s.ScheduleEvery("rotate", time.Hour, task)
	require.NoError(t, err)
	s.Start()

	newID, err := s.UpdateInterval(id, "rotate", 10*time.Millisecond, task)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, newID)

	require.Eventually(t, func() bool { return ticks.Load() >= 1 },
		2*time.Second, 5*time.Millisecond)

	_, err = s.UpdateInterval(newID, "rotate", 0, task)
	require.Error(t, err)
}

func TestScheduler_StopIsBounded(t *testing.T) {
	s, err := New(50 * time.Millisecond)
	require.NoError(t, err)

	started := make(chan struct{})
	_, err = s.ScheduleEvery("slow", 10*time.Millisecond, func() {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(10 * time.Second)
	})
	require.NoError(t, err)
	s.Start()
	<-started

	done := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within the stop timeout bound")
	}
}
