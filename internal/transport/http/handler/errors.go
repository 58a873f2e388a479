package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campus-market-auth/internal/domain"
)

// Error kinds let clients decide whether to offer "resend code".
const (
	kindValidation      = "validation"
	kindNotFound        = "not_found"
	kindExpired         = "expired"
	kindMismatch        = "mismatch"
	kindTooManyAttempts = "too_many_attempts"
	kindUnauthorized    = "unauthorized"
	kindConflict        = "conflict"
	kindUnavailable     = "unavailable"
)

const msgRetryLater = "service temporarily unavailable, try again later"

type errorMapping struct {
	target error
	status int
	kind   string
}

// Checked in order; ErrCodeNotFound must precede the generic ErrNotFound.
var errorMappings = []errorMapping{
	{domain.ErrCodeNotFound, http.StatusNotFound, kindNotFound},
	{domain.ErrCodeExpired, http.StatusGone, kindExpired},
	{domain.ErrCodeMismatch, http.StatusUnauthorized, kindMismatch},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, kindTooManyAttempts},
	{domain.ErrUnauthorized, http.StatusUnauthorized, kindUnauthorized},
	{domain.ErrNotFound, http.StatusNotFound, kindNotFound},
	{domain.ErrConflict, http.StatusConflict, kindConflict},
}

// writeServiceError maps a service error to a bounded response. Storage and
// delivery detail is logged, never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: ve.Reason, Kind: kindValidation})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, MessageEnvelope{Error: m.target.Error(), Kind: m.kind})
			return
		}
	}
	if errors.Is(err, domain.ErrBadRequest) {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: err.Error(), Kind: kindValidation})
		return
	}

	status := http.StatusServiceUnavailable
	if errors.Is(err, domain.ErrDelivery) {
		status = http.StatusBadGateway
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	writeJSON(w, status, MessageEnvelope{Error: msgRetryLater, Kind: kindUnavailable})
}
