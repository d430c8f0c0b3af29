package domain

import (
	"sort"
	"time"
)

type ChannelKind string

const (
	KindSlack ChannelKind = "slack"
)

// ServiceDescriptor is one monitored service as loaded from the monitor file.
type ServiceDescriptor struct {
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	Interval      time.Duration `json:"interval"`
	Notifications []string      `json:"notifications"`
}

// ChannelDescriptor is one outbound notification destination.
type ChannelDescriptor struct {
	Name string      `json:"name"`
	Kind ChannelKind `json:"type"`
	URL  string      `json:"-"` // webhook URLs are secrets
}

// Services maps a service name to its descriptor. Read-only after load.
type Services map[string]ServiceDescriptor

func (s Services) Lookup(name string) (ServiceDescriptor, bool) {
	d, ok := s[name]
	return d, ok
}

// Names returns the service names in sorted order.
func (s Services) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Channels maps a channel name to its descriptor. Read-only after load.
type Channels map[string]ChannelDescriptor

func (c Channels) Lookup(name string) (ChannelDescriptor, bool) {
	d, ok := c[name]
	return d, ok
}

// Registry is the validated pair handed from config loading to the monitor.
// Every channel name referenced by a service exists in Channels.
type Registry struct {
	Services Services
	Channels Channels
}
