package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "admintrail/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionRequest struct {
	Action     string `json:"action"`
	normalized bool
}

func (r *actionRequest) Normalize() {
	r.Action = strings.TrimSpace(r.Action)
	r.normalized = true
}

func (r *actionRequest) Validate() error {
	if r.Action == "" {
		return errors.New("action is required")
	}
	return nil
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (r *sessionRequest) Validate() error {
	if r.SessionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "sessionId is required")
	}
	return nil
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"action":"campaign.pause"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[actionRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "campaign.pause", result.Action)
	})

	t.Run("invalid JSON returns bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[actionRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeErrorBody(t, w)["error"])
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"action":"  user.invite "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[actionRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.True(t, result.normalized)
		assert.Equal(t, "user.invite", result.Action)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"action":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[actionRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeErrorBody(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Contains(t, body["error_description"], "action is required")
	})

	t.Run("domain validation error keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[sessionRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeErrorBody(t, w)["error"])
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session"), http.StatusUnauthorized, "unauthorized", "invalid or expired session"},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "insufficient role"), http.StatusForbidden, "forbidden", "insufficient role"},
		{"internal hides message", dErrors.New(dErrors.CodeInternal, "encoder exploded"), http.StatusInternalServerError, "internal_error", ""},
		{"plain error", errors.New("raw"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeErrorBody(t, w)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, tt.wantDesc, body["error_description"])
		})
	}
}
