package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/metrics"
	"github.com/hamed0406/ruok/internal/probe"
	"github.com/hamed0406/ruok/internal/repo"
)

// Diagnoser explains why a target went down. Used for logging only.
type Diagnoser interface {
	Diagnose(ctx context.Context, target string) probe.DNSStatus
}

// Checker owns the decision of whether a service changed state. Each
// CheckEvent is probed in its own goroutine, so probes of one service may
// overlap; the status store serialises the compare-and-swap per service.
type Checker struct {
	logger    *zap.Logger
	services  domain.Services
	status    repo.StatusStore
	probe     probe.Checker
	diagnoser Diagnoser
	metrics   *metrics.Metrics

	inbox  <-chan domain.CheckEvent
	outbox chan<- domain.NotifyEvent

	inflight sync.WaitGroup
}

func NewChecker(
	logger *zap.Logger,
	services domain.Services,
	status repo.StatusStore,
	prober probe.Checker,
	m *metrics.Metrics,
	inbox <-chan domain.CheckEvent,
	outbox chan<- domain.NotifyEvent,
) *Checker {
	return &Checker{
		logger:   logger,
		services: services,
		status:   status,
		probe:    prober,
		metrics:  m,
		inbox:    inbox,
		outbox:   outbox,
	}
}

// Run drains the inbox until ctx is cancelled or the inbox is closed, then
// waits for in-flight probes.
func (c *Checker) Run(ctx context.Context) {
	defer c.inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("checker_stopped")
			return
		case ev, ok := <-c.inbox:
			if !ok {
				c.logger.Info("checker_inbox_closed")
				return
			}
			c.handle(ctx, ev)
		}
	}
}

func (c *Checker) handle(ctx context.Context, ev domain.CheckEvent) {
	svc, ok := c.services.Lookup(ev.Service)
	if !ok {
		panic(fmt.Sprintf("checker: check event for unregistered service %q", ev.Service))
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.check(ctx, svc)
	}()
}

func (c *Checker) check(ctx context.Context, svc domain.ServiceDescriptor) {
	out := c.probe.Check(ctx, svc.URL)
	if ctx.Err() != nil {
		// shutting down; a cancelled probe says nothing about the service
		return
	}
	observed := domain.StateOf(out.Success)
	c.metrics.ObserveProbe(svc.Name, observed, out.LatencyMS)
	c.logger.Debug("probe_done",
		zap.String("service", svc.Name),
		zap.String("url", svc.URL),
		zap.Int("status", out.StatusCode),
		zap.String("state", string(observed)),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
	)

	changed, err := c.status.Transition(ctx, svc.Name, observed, func(prev domain.State) {
		c.metrics.ObserveTransition(svc.Name, observed)
		c.logger.Info("status_changed",
			zap.String("service", svc.Name),
			zap.String("from", string(prev)),
			zap.String("to", string(observed)),
			zap.Int("status", out.StatusCode),
			zap.String("reason", out.Message),
		)
		// enqueue while the entry is held so one service's events keep table order
		select {
		case c.outbox <- domain.NewNotifyEvent(svc.Name, observed):
		case <-ctx.Done():
		}
	})
	if err != nil {
		panic(fmt.Sprintf("checker: status table has no entry for %q: %v", svc.Name, err))
	}

	if changed && observed == domain.Down && c.diagnoser != nil {
		dns := c.diagnoser.Diagnose(ctx, svc.URL)
		c.logger.Info("dns_check",
			zap.String("service", svc.Name),
			zap.String("domain", dns.Domain),
			zap.String("class", dns.Class),
			zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("cname", dns.CNAME),
			zap.String("resolver_error", dns.ResolverError),
		)
	}
}
