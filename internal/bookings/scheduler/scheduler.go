package scheduler

import (
	"context"
	"sync"
	"time"

	"renthub/internal/bookings/service"
	"renthub/pkg/logger"
)

// Scheduler invokes the booking engine's expiry reconciliation on a
// fixed interval. It is a triggering shell only: all reconciliation
// rules live in the service, so tests can call the sweep directly
// instead of waiting on a clock.
type Scheduler struct {
	service  service.BookingService
	interval time.Duration
	timeout  time.Duration
	log      *logger.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func New(svc service.BookingService, interval, timeout time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		interval: interval,
		timeout:  timeout,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. A failed sweep is logged
// and retried on the next tick; it never stops the loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("Reconciliation scheduler started", "interval", s.interval)
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for an in-flight sweep to
// finish, so shutdown drains rather than aborts.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.log.Info("Reconciliation scheduler stopped")
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.service.ProcessExpiredBookings(ctx)
	if err != nil {
		s.log.Error("Expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.log.Info("Auto-returned expired bookings", "count", count)
	}
}
