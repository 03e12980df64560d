package internal

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSchedulerActive is returned by Start when the scheduler is already running
var ErrSchedulerActive = errors.New("scheduler already active")

// Scheduler fires a callback at a fixed interval while a thread is open.
// At most one run is active at a time; Stop must be called before starting another.
type Scheduler struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates an idle Scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start calls onTick every interval until Stop is called or ctx is done.
// onTick runs on the scheduler goroutine and must not block on whoever calls Stop.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration, onTick func()) error {
	if interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				// A tick racing with Stop must not fire
				if runCtx.Err() != nil {
					return
				}
				onTick()
			}
		}
	}()

	LogDebug("Scheduler started (interval %s)", interval)
	return nil
}

// Stop cancels the active run and waits for it to exit.
// It reports whether a run was active; calling it again is a no-op.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	LogDebug("Scheduler stopped")
	return true
}

// Active reports whether a run is in progress
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
