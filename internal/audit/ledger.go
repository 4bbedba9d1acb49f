package audit

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"admintrail/internal/audit/metrics"
	"admintrail/pkg/platform/middleware/requesttime"
	"admintrail/pkg/requestcontext"
)

// DefaultCapacity is the number of entries retained before the oldest is evicted.
const DefaultCapacity = 1000

// Ledger is a bounded, in-process audit log. It keeps the most recent
// capacity entries in a ring buffer; appends past capacity overwrite the
// oldest slot. Contents do not survive a restart.
type Ledger struct {
	mu   sync.RWMutex
	buf  []Entry
	head int // index of the oldest entry
	size int
	last time.Time

	now     func() time.Time
	newID   func() uuid.UUID
	metrics *metrics.Metrics
}

type LedgerOption func(*Ledger)

// WithClock overrides the timestamp source. Without it, appends use the
// request time carried by the context.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(fn func() uuid.UUID) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// NewLedger returns an empty ledger. A non-positive capacity means DefaultCapacity.
func NewLedger(capacity int, opts ...LedgerOption) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Ledger{
		buf:   make([]Entry, capacity),
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append stores a new entry built from in and returns it. Timestamps are
// strictly increasing in append order, so that ordering by timestamp is
// ordering by append.
func (l *Ledger) Append(ctx context.Context, in Input) (Entry, error) {
	entry := Entry{
		ID:        l.newID(),
		UserID:    in.UserID,
		SessionID: in.SessionID,
		Action:    in.Action,
		Details:   copyDetails(in.Details),
		IPAddress: orUnknown(in.IPAddress),
		UserAgent: orUnknown(in.UserAgent),
		Severity:  in.Severity,
	}
	if entry.Severity == "" {
		entry.Severity = DefaultSeverity
	}

	l.mu.Lock()
	ts := l.clock(ctx).UTC()
	if !ts.After(l.last) {
		ts = l.last.Add(time.Nanosecond)
	}
	l.last = ts
	entry.Timestamp = ts

	evicted := false
	if l.size < len(l.buf) {
		l.buf[(l.head+l.size)%len(l.buf)] = entry
		l.size++
	} else {
		l.buf[l.head] = entry
		l.head = (l.head + 1) % len(l.buf)
		evicted = true
	}
	size := l.size
	l.mu.Unlock()

	l.metrics.ObserveAppend(entry.Severity.String(), evicted, size)
	return copyEntry(entry), nil
}

// Query returns entries matching f, newest first, paginated by f.Offset and
// f.Limit. Out-of-range pagination yields an empty page, never an error.
func (l *Ledger) Query(_ context.Context, f Filter) Page {
	l.metrics.IncQuery()

	offset := max(f.Offset, 0)
	limit := max(f.Limit, 0)
	entries := make([]Entry, 0, min(limit, DefaultCapacity))
	total := 0

	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := l.size - 1; i >= 0; i-- {
		e := &l.buf[(l.head+i)%len(l.buf)]
		if !f.matches(e) {
			continue
		}
		if total >= offset && len(entries) < limit {
			entries = append(entries, copyEntry(*e))
		}
		total++
	}
	return Page{Entries: entries, Total: total}
}

// Len returns the number of entries currently held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

func (l *Ledger) Capacity() int {
	return len(l.buf)
}

func (l *Ledger) clock(ctx context.Context) time.Time {
	if l.now != nil {
		return l.now()
	}
	return requesttime.Now(ctx)
}

func (f Filter) matches(e *Entry) bool {
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.ActionContains != "" && !strings.Contains(e.Action, f.ActionContains) {
		return false
	}
	return true
}

func copyEntry(e Entry) Entry {
	e.Details = copyDetails(e.Details)
	return e
}

func copyDetails(d json.RawMessage) json.RawMessage {
	if len(d) == 0 {
		return json.RawMessage("null")
	}
	return append(json.RawMessage(nil), d...)
}

func orUnknown(s string) string {
	if s == "" {
		return requestcontext.Unknown
	}
	return s
}
