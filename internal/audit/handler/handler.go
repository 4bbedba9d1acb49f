package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"admintrail/internal/adminauth/cookie"
	"admintrail/internal/adminauth/models"
	"admintrail/internal/audit"
	dErrors "admintrail/pkg/domain-errors"
	"admintrail/pkg/platform/device"
	"admintrail/pkg/platform/httputil"
	"admintrail/pkg/requestcontext"
	"admintrail/pkg/validation"
)

const DefaultLimit = 50

// Authenticator verifies the admin cookies for an audit operation.
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials, op models.Operation) (*models.Principal, error)
}

// Recorder appends audit entries.
type Recorder interface {
	Record(ctx context.Context, in audit.Input) (audit.Entry, error)
}

// Reader serves ledger queries.
type Reader interface {
	Query(ctx context.Context, f audit.Filter) audit.Page
}

type Handler struct {
	auth     Authenticator
	recorder Recorder
	reader   Reader
	maxLimit int
	logger   *slog.Logger

	// writeMiddleware wraps only the append route (rate limiting).
	writeMiddleware []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithMaxLimit caps the page size a caller may request.
func WithMaxLimit(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxLimit = n
		}
	}
}

// WithWriteMiddleware adds middleware to POST /admin/audit-log only.
func WithWriteMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeMiddleware = append(h.writeMiddleware, mw...)
	}
}

func New(auth Authenticator, recorder Recorder, reader Reader, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		auth:     auth,
		recorder: recorder,
		reader:   reader,
		maxLimit: audit.DefaultCapacity,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the audit log routes with the router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.writeMiddleware...).Post("/admin/audit-log", h.HandleAppend)
	r.Get("/admin/audit-log", h.HandleQuery)
}

// AppendRequest is the body of POST /admin/audit-log.
type AppendRequest struct {
	Action   string          `json:"action" validate:"required,max=256"`
	Details  json.RawMessage `json:"details"`
	Severity string          `json:"severity" validate:"omitempty,oneof=low medium high critical"`
}

func (r *AppendRequest) Normalize() {
	r.Action = strings.TrimSpace(r.Action)
	r.Severity = strings.TrimSpace(r.Severity)
}

func (r *AppendRequest) Validate() error {
	return validation.Validate(r)
}

type AppendResponse struct {
	Success bool   `json:"success"`
	AuditID string `json:"auditId"`
}

// LogEntry is one entry of a GET /admin/audit-log response.
type LogEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	SessionID string          `json:"sessionId"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	IPAddress string          `json:"ipAddress"`
	UserAgent string          `json:"userAgent"`
	Device    string          `json:"device"`
	Timestamp time.Time       `json:"timestamp"`
	Severity  string          `json:"severity"`
}

type QueryResponse struct {
	Logs   []LogEntry `json:"logs"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// HandleAppend records one audit entry attributed to the authenticated admin.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	principal, err := h.auth.Authenticate(ctx, cookie.Read(r), models.OperationWriteAudit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AppendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	severity, _ := audit.ParseSeverity(req.Severity)

	entry, err := h.recorder.Record(ctx, audit.Input{
		UserID:    principal.UserID,
		SessionID: principal.SessionID,
		Action:    req.Action,
		Details:   req.Details,
		IPAddress: requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Severity:  severity,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &AppendResponse{
		Success: true,
		AuditID: entry.ID.String(),
	})
}

// HandleQuery lists audit entries newest first.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.auth.Authenticate(ctx, cookie.Read(r), models.OperationReadAudit); err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter, err := h.parseFilter(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid audit query",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	page := h.reader.Query(ctx, filter)
	httputil.WriteJSON(w, http.StatusOK, toQueryResponse(page, filter))
}

func (h *Handler) parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()

	severity, ok := audit.ParseSeverity(strings.TrimSpace(q.Get("severity")))
	if !ok {
		return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "severity must be one of low, medium, high, critical")
	}

	limit := parseNonNegative(q.Get("limit"), DefaultLimit)
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	return audit.Filter{
		Severity:       severity,
		ActionContains: q.Get("action"),
		Limit:          limit,
		Offset:         parseNonNegative(q.Get("offset"), 0),
	}, nil
}

// parseNonNegative returns def for empty, non-numeric or negative input.
func parseNonNegative(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func toQueryResponse(page audit.Page, f audit.Filter) *QueryResponse {
	logs := make([]LogEntry, 0, len(page.Entries))
	for _, e := range page.Entries {
		logs = append(logs, LogEntry{
			ID:        e.ID.String(),
			UserID:    e.UserID,
			SessionID: e.SessionID,
			Action:    e.Action,
			Details:   e.Details,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			Device:    device.DisplayName(e.UserAgent),
			Timestamp: e.Timestamp,
			Severity:  e.Severity.String(),
		})
	}
	return &QueryResponse{
		Logs:   logs,
		Total:  page.Total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
}
