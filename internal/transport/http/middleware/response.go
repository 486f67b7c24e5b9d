package middleware

import (
	"encoding/json"
	"net/http"
)

// Messages written by the middleware chain.
const (
	MsgInvalidToken    = "Unauthorized access. Invalid token."
	MsgLoginRequired   = "Please Login first"
	MsgNotVerified     = "Email not Verified"
	MsgTooManyRequests = "Too many requests"
)

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSONError writes {"success":false,"message":msg} with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Message: msg})
}
