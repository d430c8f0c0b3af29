package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/ruok/internal/domain"
)

// Slack posts to incoming webhooks. The webhook URL comes from the channel.
type Slack struct {
	Client *http.Client
}

func NewSlack(timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Slack{
		Client: &http.Client{Timeout: timeout},
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func slackText(service string, state domain.State) string {
	if state == domain.Up {
		return service + " is up :thumbsup:"
	}
	return service + " is down :thumbsdown:"
}

func (s *Slack) Send(ctx context.Context, ch domain.ChannelDescriptor, service string, state domain.State) error {
	if ch.URL == "" {
		return fmt.Errorf("slack %q: empty webhook url", ch.Name)
	}
	body, err := json.Marshal(slackPayload{Text: slackText(service, state)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ch.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack %q: %w", ch.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack %q: %w", ch.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack %q: non-2xx status %d", ch.Name, resp.StatusCode)
	}
	return nil
}
