package audit

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"talentgate/pkg/requestcontext"
)

// Recorder is the narrow interface services depend on for audit writes.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Publisher is the audit log. It stamps entries with an id, the request
// time, the acting user and the request id, mirrors them to the structured
// logger with log_type=audit, and appends them to the store.
//
// Persistence failures never fail the caller's operation; they are logged
// and counted.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
	entries chan Entry
	wg      sync.WaitGroup
	async   bool

	mu     sync.RWMutex // guards closed against sends on entries
	closed bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer persists entries from a background goroutine with a buffer
// of the given size. Entries are dropped with a warning when the buffer is full.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.entries = make(chan Entry, size)
			p.async = true
		}
	}
}

// WithLogger sets the structured logger entries are mirrored to.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for entry := range p.entries {
		p.persist(context.Background(), entry)
	}
}

// Close stops the async writer and waits for queued entries to persist.
// Entries recorded after Close are dropped. Close is idempotent.
func (p *Publisher) Close() {
	if !p.async {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.entries)
	p.mu.Unlock()
	p.wg.Wait()
}

// Record appends an entry to the audit log.
func (p *Publisher) Record(ctx context.Context, entry Entry) {
	entry = p.enrich(ctx, entry)
	p.logToText(ctx, entry)

	if p.async {
		p.enqueue(ctx, entry)
		return
	}
	p.persist(ctx, entry)
}

func (p *Publisher) enqueue(ctx context.Context, entry Entry) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	reason := "audit buffer full, entry dropped"
	if p.closed {
		reason = "audit publisher closed, entry dropped"
	} else {
		select {
		case p.entries <- entry:
			return
		default:
		}
	}
	p.metrics.incDropped()
	if p.logger != nil {
		p.logger.WarnContext(ctx, reason,
			"action", entry.Action,
			"entry_id", entry.ID,
		)
	}
}

// List returns retained entries, newest first.
func (p *Publisher) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return p.store.List(ctx, filter)
}

func (p *Publisher) enrich(ctx context.Context, entry Entry) Entry {
	entry = entry.Clone()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.ActorID == "" {
		entry.ActorID = requestcontext.ActorID(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}
	if entry.SubjectIDs == nil {
		entry.SubjectIDs = []string{}
	}
	if entry.DataTypes == nil {
		entry.DataTypes = []string{}
	}
	return entry
}

func (p *Publisher) persist(ctx context.Context, entry Entry) {
	if err := p.store.Append(ctx, entry); err != nil {
		p.metrics.incFailed()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to persist audit entry",
				"error", err,
				"action", entry.Action,
				"entry_id", entry.ID,
			)
		}
		return
	}
	p.metrics.incRecorded(entry.Action, entry.Success)
}

func (p *Publisher) logToText(ctx context.Context, entry Entry) {
	if p.logger == nil {
		return
	}
	args := []any{
		"log_type", "audit",
		"event", string(entry.Action),
		"entry_id", entry.ID,
		"actor_id", entry.ActorID,
		"subject_count", len(entry.SubjectIDs),
		"data_types", slices.Clone(entry.DataTypes),
		"purpose", entry.Purpose,
		"success", entry.Success,
	}
	if entry.RequestID != "" {
		args = append(args, "request_id", entry.RequestID)
	}
	if entry.Detail != "" {
		args = append(args, "detail", entry.Detail)
	}
	p.logger.InfoContext(ctx, string(entry.Action), args...)
}
