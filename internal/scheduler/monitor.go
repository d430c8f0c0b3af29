package scheduler

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/metrics"
	"github.com/hamed0406/ruok/internal/notify"
	"github.com/hamed0406/ruok/internal/probe"
	"github.com/hamed0406/ruok/internal/repo"
)

// Options tunes the queues between the actors.
type Options struct {
	CheckQueue  int
	NotifyQueue int
	// Diagnoser, when set, is consulted each time a service goes down.
	Diagnoser Diagnoser
}

// Monitor wires the scheduler, the checker and the notifier together:
// Scheduler -> CheckEvent -> Checker -> NotifyEvent -> Notifier -> Sender.
type Monitor struct {
	logger    *zap.Logger
	scheduler *Scheduler
	checker   *Checker
	notifier  *Notifier
}

func NewMonitor(
	logger *zap.Logger,
	reg domain.Registry,
	status repo.StatusStore,
	prober probe.Checker,
	sender notify.Sender,
	m *metrics.Metrics,
	opts Options,
) *Monitor {
	if opts.CheckQueue < 1 {
		opts.CheckQueue = 32
	}
	if opts.NotifyQueue < 1 {
		opts.NotifyQueue = 32
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	for _, name := range reg.Services.Names() {
		m.SetState(name, domain.Up)
	}

	checks := make(chan domain.CheckEvent, opts.CheckQueue)
	notes := make(chan domain.NotifyEvent, opts.NotifyQueue)

	checker := NewChecker(logger.Named("checker"), reg.Services, status, prober, m, checks, notes)
	checker.diagnoser = opts.Diagnoser

	return &Monitor{
		logger: logger,
		scheduler: &Scheduler{
			Logger:   logger.Named("scheduler"),
			Services: reg.Services,
			Out:      checks,
			Metrics:  m,
		},
		checker:  checker,
		notifier: NewNotifier(logger.Named("notifier"), reg.Services, reg.Channels, sender, notes),
	}
}

// Run blocks until ctx is cancelled and every actor, probe and send has
// finished.
func (m *Monitor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	run := func(f func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(ctx)
		}()
	}

	// consumers first: every timer fires immediately
	run(m.notifier.Run)
	run(m.checker.Run)
	run(m.scheduler.Run)

	m.logger.Info("monitor_started", zap.Int("services", len(m.scheduler.Services)))
	wg.Wait()
	m.logger.Info("monitor_stopped")
	return nil
}
