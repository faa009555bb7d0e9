package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/circuit"
	"talentgate/pkg/platform/upstream"
	"talentgate/pkg/requestcontext"
)

const syntheticStatus = "pending_sync"

// HTTPDoer is the subset of *http.Client the registry client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOption func(*Client)

func WithHTTPClient(c HTTPDoer) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBreaker(b *circuit.Breaker) ClientOption {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithTracer(t trace.Tracer) ClientOption {
	return func(cl *Client) {
		cl.tracer = t
	}
}

func WithClientMetrics(m *Metrics) ClientOption {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// Client submits athlete records to the registry.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient HTTPDoer
	timeout    time.Duration
	breaker    *circuit.Breaker
	tracer     trace.Tracer
	metrics    *Metrics
	logger     *slog.Logger
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		timeout:    timeout,
		breaker:    circuit.New("registry"),
		tracer:     otel.Tracer("talentgate/registry"),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends record to the registry. An expired token is refreshed and the
// call retried once. When the registry is unavailable (circuit open, outage,
// timeout or rate limiting) Submit returns a synthetic receipt and logs a
// warning. Rejections and repeated authentication failures are returned as
// errors.
func (c *Client) Submit(ctx context.Context, record Record) (Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "registry.submit",
		trace.WithAttributes(attribute.String("registry.subject_id", record.SubjectID)))
	defer span.End()

	if !c.breaker.Allow() {
		span.AddEvent("circuit_open")
		return c.fallback(ctx, span, record, "circuit_open", nil), nil
	}

	start := time.Now()
	receipt, err := c.submitWithRefresh(ctx, span, record)
	outcome := "success"
	if err != nil {
		outcome = string(upstream.CategoryOf(err))
	}
	c.metrics.ObserveRequest(outcome, time.Since(start).Seconds())

	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		span.SetAttributes(attribute.String("registry.id", receipt.RegistryID))
		return receipt, nil
	case upstream.IsRetryable(err):
		if c.breaker.RecordFailure() {
			c.metrics.IncrementBreakerOpened()
			c.logger.WarnContext(ctx, "registry circuit opened", "breaker", c.breaker.Name())
		}
		return c.fallback(ctx, span, record, outcome, err), nil
	default:
		// the registry answered; it is reachable even if it refused the record
		c.breaker.RecordSuccess()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Receipt{}, err
	}
}

func (c *Client) submitWithRefresh(ctx context.Context, span trace.Span, record Record) (Receipt, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Receipt{}, tokenError(err)
	}
	receipt, err := c.post(ctx, token, record)
	if upstream.CategoryOf(err) != upstream.CategoryAuthentication {
		return receipt, err
	}

	span.AddEvent("token_refresh")
	c.metrics.IncrementRefresh()
	token, err = c.tokens.Refresh(ctx)
	if err != nil {
		return Receipt{}, tokenError(err)
	}
	receipt, err = c.post(ctx, token, record)
	if upstream.CategoryOf(err) == upstream.CategoryAuthentication {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeAuthExpired, "registry rejected refreshed token")
	}
	return receipt, err
}

func tokenError(err error) error {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeAuthExpired, "registry token unavailable")
}

func (c *Client) post(ctx context.Context, token string, record Record) (Receipt, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return Receipt{}, upstream.New(upstream.CategoryInternal, "registry", "encode record", err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/athletes", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, upstream.New(upstream.CategoryInternal, "registry", "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, upstream.FromTransport(ctx, "registry", err)
	}
	defer resp.Body.Close()
	if ue := upstream.FromStatus("registry", resp.StatusCode); ue != nil {
		return Receipt{}, ue
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.RegistryID == "" {
		return Receipt{}, upstream.New(upstream.CategoryBadData, "registry", "invalid registry response", err)
	}
	return Receipt{
		SubjectID:  record.SubjectID,
		RegistryID: out.RegistryID,
		Status:     out.Status,
		SyncedAt:   requestcontext.Now(ctx),
	}, nil
}

func (c *Client) fallback(ctx context.Context, span trace.Span, record Record, reason string, err error) Receipt {
	c.metrics.IncrementFallback(reason)
	span.SetAttributes(attribute.Bool("registry.synthetic", true))
	c.logger.WarnContext(ctx, "registry unavailable, issuing synthetic receipt",
		"subject_id", record.SubjectID,
		"reason", reason,
		"error", err,
	)
	return Receipt{
		SubjectID:  record.SubjectID,
		RegistryID: "synthetic-" + record.SubjectID,
		Status:     syntheticStatus,
		Synthetic:  true,
		SyncedAt:   requestcontext.Now(ctx),
	}
}

// Healthy reports whether the registry circuit is closed.
func (c *Client) Healthy() bool {
	return c.breaker.State() == circuit.StateClosed
}
