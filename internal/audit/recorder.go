package audit

import (
	"context"
	"log/slog"

	"admintrail/internal/platform/tracer"
	dErrors "admintrail/pkg/domain-errors"
	"admintrail/pkg/platform/privacy"
	"admintrail/pkg/requestcontext"
)

// Appender persists entries. Satisfied by *Ledger.
type Appender interface {
	Append(ctx context.Context, in Input) (Entry, error)
}

// Recorder appends entries and mirrors each one to the structured log.
// Details are never logged; they stay in the ledger.
type Recorder struct {
	store  Appender
	logger *slog.Logger
	tracer tracer.Tracer
}

type RecorderOption func(*Recorder)

func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRecorderTracer(t tracer.Tracer) RecorderOption {
	return func(r *Recorder) {
		if t != nil {
			r.tracer = t
		}
	}
}

func NewRecorder(store Appender, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends in and returns the stored entry.
func (r *Recorder) Record(ctx context.Context, in Input) (Entry, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanAuditAppend,
		tracer.String(tracer.AttrAction, in.Action),
	)

	requestID := requestcontext.RequestID(ctx)
	entry, err := r.store.Append(ctx, in)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to append audit entry",
			"action", in.Action,
			"user_id", in.UserID,
			"error", err,
			"request_id", requestID,
		)
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit entry")
		span.End(err)
		return Entry{}, err
	}

	span.SetAttributes(tracer.String(tracer.AttrSeverity, entry.Severity.String()))
	span.End(nil)

	r.logger.InfoContext(ctx, entry.Action,
		"event", entry.Action,
		"log_type", "audit",
		"audit_id", entry.ID.String(),
		"user_id", entry.UserID,
		"session_id", entry.SessionID,
		"severity", entry.Severity.String(),
		"ip_prefix", privacy.AnonymizeIP(entry.IPAddress),
		"request_id", requestID,
	)
	return entry, nil
}
