package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// IssueEnvelope wraps send-email-verification responses. Code is only set in
// development deployments.
type IssueEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// VerifyEnvelope wraps verify-email-code responses.
type VerifyEnvelope struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
