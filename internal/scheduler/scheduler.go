package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/metrics"
)

// Scheduler runs one ticker per service and offers a CheckEvent on every
// tick. Offers never block: when the checker inbox is full the event is
// dropped and the next tick tries again.
type Scheduler struct {
	Logger   *zap.Logger
	Services domain.Services
	Out      chan<- domain.CheckEvent
	Metrics  *metrics.Metrics
}

// Run starts the timers and blocks until ctx is cancelled and every timer
// has stopped.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range s.Services.Names() {
		svc := s.Services[name]
		if svc.Interval <= 0 {
			s.Logger.Error("invalid_interval", zap.String("service", name), zap.Duration("interval", svc.Interval))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tick(ctx, svc)
		}()
	}
	wg.Wait()
	s.Logger.Info("scheduler_stopped")
}

func (s *Scheduler) tick(ctx context.Context, svc domain.ServiceDescriptor) {
	t := time.NewTicker(svc.Interval)
	defer t.Stop()

	// check as soon as monitoring starts
	s.offer(svc.Name)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.offer(svc.Name)
		}
	}
}

func (s *Scheduler) offer(service string) bool {
	select {
	case s.Out <- domain.CheckEvent{Service: service}:
		return true
	default:
		s.Metrics.ObserveDrop(service)
		s.Logger.Warn("check_dropped", zap.String("service", service))
		return false
	}
}
