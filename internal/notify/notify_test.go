package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/metrics"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(context.Context, domain.ChannelDescriptor, string, domain.State) error {
	s.calls++
	return s.err
}

func TestKinds_RoutesByKind(t *testing.T) {
	slack := &stubSender{}
	k := Kinds{domain.KindSlack: slack}

	err := k.Send(context.Background(), domain.ChannelDescriptor{Name: "n1", Kind: domain.KindSlack}, "s1", domain.Up)
	require.NoError(t, err)
	require.Equal(t, 1, slack.calls)

	err = k.Send(context.Background(), domain.ChannelDescriptor{Name: "n2", Kind: "pager"}, "s1", domain.Up)
	require.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestLogged_SwallowsAndRecordsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.New(prometheus.NewRegistry())
	inner := &stubSender{err: errors.New("webhook down")}
	l := &Logged{Inner: inner, Logger: zap.New(core), Metrics: m}

	ch := domain.ChannelDescriptor{Name: "n1", Kind: domain.KindSlack}
	require.NoError(t, l.Send(context.Background(), ch, "s1", domain.Down))

	require.Equal(t, 1, logs.FilterMessage("notification_failed").Len())
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("n1", "error")))

	inner.err = nil
	require.NoError(t, l.Send(context.Background(), ch, "s1", domain.Up))
	require.Equal(t, 1, logs.FilterMessage("notification_sent").Len())
	require.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("n1", "ok")))
}
