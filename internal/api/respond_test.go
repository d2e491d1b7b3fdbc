package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"passvault/internal/apperr"
)

func TestRespondMergesPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	respond(rr, http.StatusOK, "done", envelope{"itemId": 7})

	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"success":true,"message":"done","itemId":7}`, rr.Body.String())
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	var logs bytes.Buffer
	s := &Server{logger: slog.New(slog.NewJSONHandler(&logs, nil))}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s.respondError(rr, req, apperr.Internal("Error reading items.", errors.New("connection reset by peer")))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"success":false,"message":"Error reading items."}`, rr.Body.String())
	require.Contains(t, logs.String(), "connection reset by peer")
}

func TestRespondErrorKinds(t *testing.T) {
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	tests := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Unauthorized("who"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.NotFoundOrForbidden("gone"), http.StatusNotFound},
		{apperr.Conflict("dup"), http.StatusConflict},
		{errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		s.respondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		require.Equal(t, tt.status, rr.Code, tt.err.Error())
	}

	rr := httptest.NewRecorder()
	s.respondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("raw"))
	require.Contains(t, rr.Body.String(), "An unexpected error occurred.")
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	var dst LoginRequest
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{not json"))
	err := decodeJSON(req, &dst)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
