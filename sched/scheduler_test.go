package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerFires(t *testing.T) {
	s := NewTickerScheduler()
	defer s.Stop()

	var fires atomic.Int64
	done := make(chan struct{})
	cancel := s.Schedule(5*time.Millisecond, func() {
		if fires.Add(1) == 3 {
			close(done)
		}
	})
	defer cancel.Cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected 3 fires, saw %d", fires.Load())
	}
}

func TestTickerSchedulerCancelStopsFiring(t *testing.T) {
	s := NewTickerScheduler()
	defer s.Stop()

	var fires atomic.Int64
	cancel := s.Schedule(5*time.Millisecond, func() { fires.Add(1) })

	cancel.Cancel()
	cancel.Cancel() // idempotent

	settled := fires.Load()
	time.Sleep(50 * time.Millisecond)
	if after := fires.Load(); after > settled+1 {
		t.Errorf("task kept firing after cancel: %d then %d", settled, after)
	}
}

func TestTickerSchedulerRejectsBadArguments(t *testing.T) {
	s := NewTickerScheduler()
	defer s.Stop()

	s.Schedule(0, func() {}).Cancel()
	s.Schedule(-time.Second, func() {}).Cancel()
	s.Schedule(time.Second, nil).Cancel()
}

func TestTickerSchedulerStopCancelsAll(t *testing.T) {
	s := NewTickerScheduler()

	var fires atomic.Int64
	s.Schedule(5*time.Millisecond, func() { fires.Add(1) })
	s.Schedule(5*time.Millisecond, func() { fires.Add(1) })

	s.Stop()
	settled := fires.Load()
	time.Sleep(50 * time.Millisecond)
	if after := fires.Load(); after > settled+2 {
		t.Errorf("tasks kept firing after Stop: %d then %d", settled, after)
	}

	// No new schedules after Stop.
	s.Schedule(time.Millisecond, func() { fires.Add(100) })
	time.Sleep(20 * time.Millisecond)
	if fires.Load() >= 100 {
		t.Error("scheduler accepted a schedule after Stop")
	}
}
