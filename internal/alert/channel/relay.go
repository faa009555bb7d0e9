package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"talentgate/internal/alert/models"
	"talentgate/pkg/platform/upstream"
)

const smsMaxRunes = 160

// HTTPDoer is the subset of *http.Client the relay needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RelayMessage is the JSON body posted to an email or SMS relay.
type RelayMessage struct {
	AlertID    string   `json:"alertId"`
	Priority   string   `json:"priority"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject,omitempty"`
	Body       string   `json:"body"`
}

// HTTPRelay posts alerts to an HTTP relay service (an email gateway or an
// SMS gateway).
type HTTPRelay struct {
	channel    models.Channel
	url        string
	apiKey     string
	httpClient HTTPDoer
	timeout    time.Duration
}

// RelayOption configures an HTTPRelay.
type RelayOption func(*HTTPRelay)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) RelayOption {
	return func(r *HTTPRelay) {
		r.httpClient = client
	}
}

// WithAPIKey sets the X-API-Key header sent to the relay.
func WithAPIKey(key string) RelayOption {
	return func(r *HTTPRelay) {
		r.apiKey = key
	}
}

// NewEmailRelay creates the email route.
func NewEmailRelay(url string, timeout time.Duration, opts ...RelayOption) *HTTPRelay {
	return newRelay(models.ChannelEmail, url, timeout, opts...)
}

// NewSMSRelay creates the SMS route. Bodies are truncated to 160 characters.
func NewSMSRelay(url string, timeout time.Duration, opts ...RelayOption) *HTTPRelay {
	return newRelay(models.ChannelSMS, url, timeout, opts...)
}

func newRelay(channel models.Channel, url string, timeout time.Duration, opts ...RelayOption) *HTTPRelay {
	r := &HTTPRelay{
		channel:    channel,
		url:        url,
		httpClient: http.DefaultClient,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HTTPRelay) Channel() models.Channel {
	return r.channel
}

// Send posts the alert and classifies any failure.
func (r *HTTPRelay) Send(ctx context.Context, alert models.Alert) error {
	if len(alert.Recipients) == 0 {
		return deliveryError(r.channel, upstream.New(upstream.CategoryBadData, string(r.channel), "no recipients", nil))
	}
	body, err := json.Marshal(r.message(alert))
	if err != nil {
		return deliveryError(r.channel, upstream.New(upstream.CategoryInternal, string(r.channel), "encode message", err))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return deliveryError(r.channel, upstream.New(upstream.CategoryInternal, string(r.channel), "create request", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return deliveryError(r.channel, upstream.FromTransport(ctx, string(r.channel), err))
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if ue := upstream.FromStatus(string(r.channel), resp.StatusCode); ue != nil {
		return deliveryError(r.channel, ue)
	}
	return nil
}

func (r *HTTPRelay) message(alert models.Alert) RelayMessage {
	msg := RelayMessage{
		AlertID:    alert.ID,
		Priority:   string(alert.Priority),
		Recipients: alert.Recipients,
	}
	if r.channel == models.ChannelSMS {
		msg.Body = truncateRunes(fmt.Sprintf("%s: %s", alert.Title, alert.Message), smsMaxRunes)
		return msg
	}
	msg.Subject = alert.Title
	msg.Body = alert.Message
	return msg
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
