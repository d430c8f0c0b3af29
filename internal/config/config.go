package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process settings. The monitored services themselves come from
// the monitor file, see Load.
type Config struct {
	Addr           string        // status API bind address, "off" disables it
	LogDir         string        // logs directory
	LogLevel       string        // zap level name
	ProbeTimeout   time.Duration // per-probe HTTP client timeout
	NotifyTimeout  time.Duration // per-send HTTP client timeout
	CheckQueue     int           // checker inbox capacity
	NotifyQueue    int           // notifier inbox capacity
	PublicAPIKeys  []string      // empty means the status API is open
	AllowedOrigins []string      // empty means any origin
	PublicRPM      int
	PublicBurst    int
}

// APIEnabled reports whether the status API should be served.
func (c Config) APIEnabled() bool {
	return c.Addr != "" && !strings.EqualFold(c.Addr, "off")
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		Addr:           addr,
		LogDir:         logDir,
		LogLevel:       logLevel,
		ProbeTimeout:   envMillis("PROBE_TIMEOUT_MS", 10*time.Second),
		NotifyTimeout:  envMillis("NOTIFY_TIMEOUT_MS", 10*time.Second),
		CheckQueue:     envInt("CHECK_QUEUE_SIZE", 32),
		NotifyQueue:    envInt("NOTIFY_QUEUE_SIZE", 32),
		PublicAPIKeys:  envList("PUBLIC_API_KEYS"),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
		PublicRPM:      envInt("PUBLIC_RPM", 120),
		PublicBurst:    envInt("PUBLIC_BURST", 60),
	}
}

// envInt returns def unless the variable holds a positive integer.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
