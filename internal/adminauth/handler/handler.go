package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"admintrail/internal/adminauth/cookie"
	"admintrail/internal/adminauth/models"
	dErrors "admintrail/pkg/domain-errors"
	"admintrail/pkg/platform/httputil"
	"admintrail/pkg/requestcontext"
	"admintrail/pkg/validation"
)

// Service is the verification surface the handler depends on.
type Service interface {
	VerifySession(ctx context.Context, creds models.Credentials, sessionID, userID string) (*models.Principal, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers admin session routes with the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/verify-session", h.HandleVerifySession)
}

// VerifySessionRequest is the body of POST /admin/verify-session.
type VerifySessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,max=256"`
	UserID    string `json:"userId" validate:"required,max=256"`
}

func (r *VerifySessionRequest) Normalize() {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.UserID = strings.TrimSpace(r.UserID)
}

func (r *VerifySessionRequest) Validate() error {
	return validation.Validate(r)
}

type UserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type VerifySessionResponse struct {
	Valid            bool         `json:"valid"`
	User             UserResponse `json:"user"`
	SessionExpiresAt int64        `json:"sessionExpiresAt"`
}

// HandleVerifySession checks the admin cookies against the requested
// session and user. All session failures other than missing cookies and
// insufficient role answer with the same 401.
func (h *Handler) HandleVerifySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifySessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	principal, err := h.service.VerifySession(ctx, cookie.Read(r), req.SessionID, req.UserID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "session verification failed",
				"error", err,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin session verified",
		"user_id", principal.UserID,
		"role", principal.Role.String(),
		"request_id", requestID,
	)

	httputil.WriteJSON(w, http.StatusOK, toVerifySessionResponse(principal))
}

func toVerifySessionResponse(p *models.Principal) *VerifySessionResponse {
	permissions := p.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return &VerifySessionResponse{
		Valid: true,
		User: UserResponse{
			ID:          p.UserID,
			Email:       p.Email,
			Role:        p.Role.String(),
			Permissions: permissions,
		},
		SessionExpiresAt: p.ExpiresAt,
	}
}
