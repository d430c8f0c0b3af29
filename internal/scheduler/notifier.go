package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/notify"
)

// Notifier fans a NotifyEvent out to every channel of the service. Each send
// runs in its own goroutine and its result is left to the Sender.
type Notifier struct {
	logger   *zap.Logger
	services domain.Services
	channels domain.Channels
	sender   notify.Sender

	inbox <-chan domain.NotifyEvent

	inflight sync.WaitGroup
}

func NewNotifier(
	logger *zap.Logger,
	services domain.Services,
	channels domain.Channels,
	sender notify.Sender,
	inbox <-chan domain.NotifyEvent,
) *Notifier {
	return &Notifier{
		logger:   logger,
		services: services,
		channels: channels,
		sender:   sender,
		inbox:    inbox,
	}
}

// Run drains the inbox until ctx is cancelled or the inbox is closed, then
// waits for sends already started.
func (n *Notifier) Run(ctx context.Context) {
	defer n.inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("notifier_stopped")
			return
		case ev, ok := <-n.inbox:
			if !ok {
				n.logger.Info("notifier_inbox_closed")
				return
			}
			n.handle(ctx, ev)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev domain.NotifyEvent) {
	svc, ok := n.services.Lookup(ev.Service)
	if !ok {
		panic(fmt.Sprintf("notifier: notify event for unregistered service %q", ev.Service))
	}
	targets := make([]domain.ChannelDescriptor, 0, len(svc.Notifications))
	for _, name := range svc.Notifications {
		ch, ok := n.channels.Lookup(name)
		if !ok {
			panic(fmt.Sprintf("notifier: service %q references unknown channel %q", svc.Name, name))
		}
		targets = append(targets, ch)
	}

	n.logger.Info("dispatch",
		zap.String("event_id", ev.ID.String()),
		zap.String("service", ev.Service),
		zap.String("state", string(ev.State)),
		zap.Int("channels", len(targets)),
	)

	// a send that has started finishes even if the monitor is stopping
	sendCtx := context.WithoutCancel(ctx)
	for _, ch := range targets {
		n.inflight.Add(1)
		go func() {
			defer n.inflight.Done()
			_ = n.sender.Send(sendCtx, ch, ev.Service, ev.State)
		}()
	}
}
