package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/peachlease/edu-verify/internal/application/verification"
	"github.com/peachlease/edu-verify/internal/domain"
)

// maxBodyBytes caps request bodies; both payloads are two short strings.
const maxBodyBytes = 4 << 10

const (
	msgCodeSent      = "Verification code sent successfully"
	msgEmailVerified = "Email verified successfully"
	msgConfig        = "Server configuration error"
	msgStoreFailed   = "Failed to store verification code"
	msgVerifyFailed  = "Failed to verify code"
	msgMissingFields = "Email and verification code required"
	msgInvalidCode   = "Invalid or expired verification code"
	msgInvalidBody   = "invalid request body"
	msgInternal      = "Internal server error"
)

// VerificationHandler serves the send-email-verification and
// verify-email-code endpoints.
type VerificationHandler struct {
	svc    verification.Service
	mode   domain.DeploymentMode
	suffix string
}

func NewVerificationHandler(svc verification.Service, mode domain.DeploymentMode, suffix string) *VerificationHandler {
	return &VerificationHandler{svc: svc, mode: mode, suffix: suffix}
}

// Preflight answers CORS OPTIONS requests with an empty 200.
func (h *VerificationHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	res, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmailDomain):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Valid %s email required", h.suffix))
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, msgInvalidBody)
		case errors.Is(err, domain.ErrConfiguration):
			writeError(w, http.StatusInternalServerError, msgConfig)
		case errors.Is(err, domain.ErrPersistence):
			h.writeServerError(w, msgStoreFailed, err)
		default:
			h.writeServerError(w, msgInternal, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, IssueEnvelope{Message: msgCodeSent, Code: res.Code})
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidateRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	res, err := h.svc.Validate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			writeError(w, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, domain.ErrInvalidOrExpiredCode):
			writeError(w, http.StatusBadRequest, msgInvalidCode)
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, msgInvalidBody)
		case errors.Is(err, domain.ErrConfiguration):
			writeError(w, http.StatusInternalServerError, msgConfig)
		case errors.Is(err, domain.ErrPersistence):
			writeError(w, http.StatusInternalServerError, msgVerifyFailed)
		default:
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Message: msgEmailVerified, VerificationToken: res.ProofToken})
}

// writeServerError attaches the underlying error text as details only in
// development deployments.
func (h *VerificationHandler) writeServerError(w http.ResponseWriter, msg string, err error) {
	env := MessageEnvelope{Error: msg}
	if h.mode == domain.Development {
		env.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}

// decodeStrict decodes exactly one JSON object with no unknown fields.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}
