package scheduler

import (
	"context"
	"sync"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/probe"
)

// scriptedProbe returns the next scripted outcome for a target; the last
// outcome repeats once the script runs out.
type scriptedProbe struct {
	mu     sync.Mutex
	script map[string][]bool
	calls  map[string]int
}

func newScriptedProbe(script map[string][]bool) *scriptedProbe {
	return &scriptedProbe{script: script, calls: map[string]int{}}
}

func (s *scriptedProbe) Check(_ context.Context, target string) probe.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	outs := s.script[target]
	i := s.calls[target]
	s.calls[target]++
	if len(outs) == 0 {
		return probe.CheckResult{Success: false, Message: "no script"}
	}
	if i >= len(outs) {
		i = len(outs) - 1
	}
	if outs[i] {
		return probe.CheckResult{Success: true, StatusCode: 200, Message: "200 OK"}
	}
	return probe.CheckResult{Success: false, StatusCode: 503, Message: "503 Service Unavailable"}
}

// gatedProbe blocks every check until release is closed.
type gatedProbe struct {
	release chan struct{}
	success bool
}

func (g *gatedProbe) Check(ctx context.Context, _ string) probe.CheckResult {
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return probe.CheckResult{Success: g.success}
}

// countingDiagnoser records the targets it was asked about.
type countingDiagnoser struct {
	mu      sync.Mutex
	targets []string
}

func (d *countingDiagnoser) Diagnose(_ context.Context, target string) probe.DNSStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets = append(d.targets, target)
	return probe.DNSStatus{Domain: "s1", Class: probe.DNSResolves}
}

func (d *countingDiagnoser) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.targets...)
}

type sent struct {
	channel string
	service string
	state   domain.State
}

type recordingSender struct {
	mu    sync.Mutex
	sends []sent
	// block, when set, holds sends to the named channel until it is closed
	block map[string]chan struct{}
	fail  map[string]error
}

func (r *recordingSender) Send(_ context.Context, ch domain.ChannelDescriptor, service string, state domain.State) error {
	if gate, ok := r.block[ch.Name]; ok {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, sent{channel: ch.Name, service: service, state: state})
	return r.fail[ch.Name]
}

func (r *recordingSender) count(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sends {
		if s.channel == channel {
			n++
		}
	}
	return n
}

func (r *recordingSender) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sends...)
}

func drain(ch <-chan domain.NotifyEvent) []domain.NotifyEvent {
	var out []domain.NotifyEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
