package http

import (
	"github.com/peachlease/edu-verify/internal/application/verification"
	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/transport/http/middleware"
)

// Deps holds everything the router needs beyond configuration.
type Deps struct {
	Verification verification.Service
	// ProofVerifier mounts GET /verification-token when set.
	ProofVerifier middleware.TokenVerifier
}

func (d *Deps) validate(cfg *config.Config) bool {
	return d != nil && cfg != nil && d.Verification != nil
}
