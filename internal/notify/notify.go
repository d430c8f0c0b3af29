package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/metrics"
)

var ErrUnsupportedKind = errors.New("unsupported channel kind")

// Sender delivers one notification about service to a single channel.
type Sender interface {
	Send(ctx context.Context, ch domain.ChannelDescriptor, service string, state domain.State) error
}

// Kinds routes a send to the Sender registered for the channel's kind.
type Kinds map[domain.ChannelKind]Sender

func (k Kinds) Send(ctx context.Context, ch domain.ChannelDescriptor, service string, state domain.State) error {
	s, ok := k[ch.Kind]
	if !ok || s == nil {
		return fmt.Errorf("channel %q: %w: %s", ch.Name, ErrUnsupportedKind, ch.Kind)
	}
	return s.Send(ctx, ch, service, state)
}

// Logged wraps a Sender so every outcome is logged and counted. Failures stop
// here: callers never see them.
type Logged struct {
	Inner   Sender
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func (l *Logged) Send(ctx context.Context, ch domain.ChannelDescriptor, service string, state domain.State) error {
	start := time.Now()
	err := l.Inner.Send(ctx, ch, service, state)
	if l.Metrics != nil {
		l.Metrics.ObserveSend(ch.Name, err)
	}
	fields := []zap.Field{
		zap.String("channel", ch.Name),
		zap.String("kind", string(ch.Kind)),
		zap.String("service", service),
		zap.String("state", string(state)),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		l.Logger.Warn("notification_failed", append(fields, zap.Error(err))...)
		return nil
	}
	l.Logger.Info("notification_sent", fields...)
	return nil
}
