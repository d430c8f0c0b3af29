package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/ruok/internal/domain"
)

// MinInterval is the shortest probe interval a service may declare.
const MinInterval = time.Second

// maxIntervalSeconds is the largest whole-second count a time.Duration holds.
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

var (
	ErrNoServices             = errors.New("monitor file defines no services")
	ErrUndefinedNotification  = errors.New("undefined notification")
	ErrDuplicateNotification  = errors.New("duplicate notification")
	ErrUnsupportedChannelKind = errors.New("unsupported notification type")
)

// interval accepts whole seconds (the documented form) or a Go duration string.
type interval time.Duration

func (i *interval) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: interval must be a scalar", n.Line)
	}
	v := strings.TrimSpace(n.Value)
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 || secs > maxIntervalSeconds {
			return fmt.Errorf("line %d: interval %d seconds is out of range", n.Line, secs)
		}
		*i = interval(time.Duration(secs) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("line %d: interval %q: want seconds or a duration like 1500ms", n.Line, v)
	}
	*i = interval(d)
	return nil
}

type serviceFile struct {
	URL           string   `yaml:"url"`
	Interval      interval `yaml:"interval"`
	Notifications []string `yaml:"notifications"`
}

type channelFile struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

type monitorFile struct {
	Services      map[string]serviceFile `yaml:"services"`
	Notifications map[string]channelFile `yaml:"notifications"`
}

// Load reads and validates the monitor file at path.
func Load(path string) (domain.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("read monitor file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a monitor file and validates it. Every problem found is
// reported, combined into one error.
func Parse(r io.Reader) (domain.Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var mf monitorFile
	if err := dec.Decode(&mf); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Registry{}, ErrNoServices
		}
		return domain.Registry{}, fmt.Errorf("parse monitor file: %w", err)
	}
	return mf.validate()
}

func (mf monitorFile) validate() (domain.Registry, error) {
	reg := domain.Registry{
		Services: make(domain.Services, len(mf.Services)),
		Channels: make(domain.Channels, len(mf.Notifications)),
	}
	var errs error

	if len(mf.Services) == 0 {
		errs = multierr.Append(errs, ErrNoServices)
	}

	for _, name := range sortedKeys(mf.Notifications) {
		c := mf.Notifications[name]
		kind := domain.ChannelKind(strings.ToLower(strings.TrimSpace(c.Type)))
		if kind != domain.KindSlack {
			errs = multierr.Append(errs, fmt.Errorf("notification %q: %w: %q", name, ErrUnsupportedChannelKind, c.Type))
		}
		if err := checkURL(c.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notification %q: %w", name, err))
		}
		reg.Channels[name] = domain.ChannelDescriptor{Name: name, Kind: kind, URL: c.URL}
	}

	for _, name := range sortedKeys(mf.Services) {
		s := mf.Services[name]
		if err := checkURL(s.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("service %q: %w", name, err))
		}
		if d := time.Duration(s.Interval); d < MinInterval {
			errs = multierr.Append(errs, fmt.Errorf("service %q: interval %s is below %s", name, d, MinInterval))
		}
		seen := make(map[string]bool, len(s.Notifications))
		for _, n := range s.Notifications {
			if seen[n] {
				errs = multierr.Append(errs, fmt.Errorf("service %q: %w: %q", name, ErrDuplicateNotification, n))
				continue
			}
			seen[n] = true
			if _, ok := mf.Notifications[n]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("service %q: %w: %q", name, ErrUndefinedNotification, n))
			}
		}
		reg.Services[name] = domain.ServiceDescriptor{
			Name:          name,
			URL:           s.URL,
			Interval:      time.Duration(s.Interval),
			Notifications: append([]string(nil), s.Notifications...),
		}
	}

	if errs != nil {
		return domain.Registry{}, errs
	}
	return reg, nil
}

func checkURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q: want an absolute http(s) url", raw)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
