package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/park285/cheese-web/internal/chess"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

// Error codes carried in chessdto.ErrorResponse.
const (
	codeBadRequest      = "bad_request"
	codeInvalidMove     = "invalid_move"
	codeInvalidMode     = "invalid_mode"
	codeInvalidSide     = "invalid_side"
	codeInvalidMessage  = "invalid_message"
	codeNotFound        = "session_not_found"
	codeTooManySessions = "too_many_sessions"
	codeGameOver        = "game_over"
	codeNotInProgress   = "not_in_progress"
	codeSessionClosed   = "session_closed"
	codeInternal        = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readJSON decodes the body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, chessdto.ErrorResponse{Code: code, Message: msg})
}

// errorStatus maps a domain error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable, codeTooManySessions
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusGone, codeSessionClosed
	case errors.Is(err, session.ErrGameOver):
		return http.StatusConflict, codeGameOver
	case errors.Is(err, session.ErrNotInProgress):
		return http.StatusConflict, codeNotInProgress
	case errors.Is(err, session.ErrEmptyMessage), errors.Is(err, session.ErrMessageTooLong):
		return http.StatusBadRequest, codeInvalidMessage
	case errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest, codeInvalidMode
	case errors.Is(err, domain.ErrInvalidSide):
		return http.StatusBadRequest, codeInvalidSide
	case errors.Is(err, chess.ErrInvalidMove):
		return http.StatusBadRequest, codeInvalidMove
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func errorResponse(err error) *chessdto.ErrorResponse {
	_, code := errorStatus(err)
	return &chessdto.ErrorResponse{Code: code, Message: err.Error()}
}
