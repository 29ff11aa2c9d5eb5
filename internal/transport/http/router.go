package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/transport/http/handler"
	appmiddleware "github.com/peachlease/edu-verify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// background work of the rate limiter.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	if !deps.validate(cfg) {
		panic("transport/http: NewRouter requires config and a verification service")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on both public verification endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(deps.Verification, cfg.Mode, cfg.EmailSuffix)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Handle("/metrics", promhttp.Handler())

	if deps.ProofVerifier != nil {
		r.With(appmiddleware.Auth(deps.ProofVerifier)).Get("/verification-token", handler.ProofToken)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}
		r.Use(sensitiveRL.Limit)

		for _, path := range []string{"/send-email-verification", "/send-verification-email"} {
			r.Post(path, verifyH.Send)
			r.Options(path, verifyH.Preflight)
		}
		r.Post("/verify-email-code", verifyH.Verify)
		r.Options("/verify-email-code", verifyH.Preflight)
	})

	return r
}
