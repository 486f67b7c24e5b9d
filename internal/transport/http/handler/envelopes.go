package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-blog-nosql/internal/domain"
)

const msgInvalidPayload = "Invalid Payload"

// Envelope is the response wrapper used by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Cursor  string      `json:"cursor,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// LoginEnvelope wraps the login response.
type LoginEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ID        string `json:"id"`
	ProfileID string `json:"profileId"`
	Token     string `json:"token"`
}

// outcome overrides the message written for one sentinel error.
type outcome struct {
	err error
	msg string
}

// statuses maps sentinel errors to HTTP status codes. Order matters only
// for errors that wrap more than one sentinel.
var statuses = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrDuplicateEmail, http.StatusConflict, "Email already Registered"},
	{domain.ErrUserNotFound, http.StatusBadRequest, "User not found."},
	{domain.ErrAlreadyVerified, http.StatusBadRequest, "User is already verified."},
	{domain.ErrVerifiedOrUnregistered, http.StatusBadRequest, "Email is Verified or not Registered"},
	{domain.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP."},
	{domain.ErrNotVerified, http.StatusUnauthorized, "Email not Verified"},
	{domain.ErrWrongPassword, http.StatusUnauthorized, "Wrong Password"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized access. Invalid token."},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Please Login first"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrConflict, http.StatusConflict, "Conflict"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many attempts, try again later"},
	{domain.ErrBadRequest, http.StatusBadRequest, "Bad request"},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, msg string, data interface{}) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg})
}

func writeInvalidPayload(w http.ResponseWriter, fields ...string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: msgInvalidPayload, Errors: fields})
}

// writeServiceError maps err to a response. Overrides are checked first,
// then validation failures, then the sentinel table. Anything else is a
// 500 carrying serverMsg and the error text.
func writeServiceError(w http.ResponseWriter, err error, serverMsg string, overrides ...outcome) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeInvalidPayload(w, ve.Fields...)
		return
	}
	for _, s := range statuses {
		if !errors.Is(err, s.err) {
			continue
		}
		msg := s.msg
		for _, o := range overrides {
			if o.err == s.err {
				msg = o.msg
				break
			}
		}
		writeError(w, s.status, msg)
		return
	}
	slog.Error(serverMsg, "err", err)
	writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: serverMsg, Error: err.Error()})
}

// decodeJSON reads the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeInvalidPayload(w, "request body must be valid JSON")
		return false
	}
	return true
}
