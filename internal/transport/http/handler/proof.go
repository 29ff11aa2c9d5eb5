package handler

import (
	"net/http"
	"time"

	"github.com/peachlease/edu-verify/internal/transport/http/middleware"
)

// ProofEnvelope describes a verified proof token.
type ProofEnvelope struct {
	Email     string `json:"email"`
	Verified  bool   `json:"verified"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// ProofToken reports the email a proof token vouches for. It must run behind
// middleware.Auth.
func ProofToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	env := ProofEnvelope{Email: claims.Email, Verified: true}
	if claims.ExpiresAt != nil {
		env.ExpiresAt = claims.ExpiresAt.Time.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, env)
}
