package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/peachlease/edu-verify/internal/observability"
	"github.com/peachlease/edu-verify/internal/pkg/emailaddr"
	"github.com/peachlease/edu-verify/internal/pkg/id"
	"github.com/peachlease/edu-verify/internal/pkg/otp"
	"github.com/peachlease/edu-verify/internal/pkg/validate"
)

const (
	// CodeTTL is how long an issued code stays consumable.
	CodeTTL = 15 * time.Minute

	// maxCodeAttempts bounds regeneration when a fresh code collides with an
	// earlier one for the same email.
	maxCodeAttempts = 3

	defaultDeliveryTimeout = 10 * time.Second
)

// Store is the durable home of verification records. Consume must check the
// eligibility predicate and flip verified in one atomic step.
type Store interface {
	Create(ctx context.Context, v *domain.EmailVerification) error
	Consume(ctx context.Context, email, code string, now time.Time) error
}

// Notifier carries a rendered email to the user. Best effort only.
type Notifier interface {
	Deliver(ctx context.Context, msg domain.Message) error
}

// TokenSigner mints a proof token for a freshly verified email.
type TokenSigner interface {
	Sign(email string) (string, error)
}

type Service interface {
	Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssueResult, error)
	Validate(ctx context.Context, req domain.ValidateRequest) (*domain.ValidateResult, error)
	// Wait blocks until dispatched deliveries have finished.
	Wait()
}

// ServiceDeps wires a Service. Store is required for Issue and Validate to
// succeed; everything else has a usable zero value.
type ServiceDeps struct {
	Store           Store
	Notifier        Notifier
	Channel         string
	Renderer        *Renderer
	Signer          TokenSigner
	Mode            domain.DeploymentMode
	EmailSuffix     string
	TTL             time.Duration
	DeliveryTimeout time.Duration
	Logger          *slog.Logger
	Now             func() time.Time
	NewCode         func() (string, error)
}

type service struct {
	store           Store
	notifier        Notifier
	channel         string
	renderer        *Renderer
	signer          TokenSigner
	mode            domain.DeploymentMode
	suffix          string
	ttl             time.Duration
	deliveryTimeout time.Duration
	log             *slog.Logger
	now             func() time.Time
	newCode         func() (string, error)

	inflight sync.WaitGroup
}

func NewService(d ServiceDeps) Service {
	s := &service{
		store:           d.Store,
		notifier:        d.Notifier,
		channel:         d.Channel,
		renderer:        d.Renderer,
		signer:          d.Signer,
		mode:            d.Mode,
		suffix:          strings.ToLower(d.EmailSuffix),
		ttl:             d.TTL,
		deliveryTimeout: d.DeliveryTimeout,
		log:             d.Logger,
		now:             d.Now,
		newCode:         d.NewCode,
	}
	if s.suffix == "" {
		s.suffix = ".edu"
	}
	if s.ttl <= 0 {
		s.ttl = CodeTTL
	}
	if s.deliveryTimeout <= 0 {
		s.deliveryTimeout = defaultDeliveryTimeout
	}
	if s.renderer == nil {
		s.renderer = MustDefaultRenderer()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = otp.NewCode
	}
	if s.channel == "" {
		s.channel = "none"
	}
	return s
}

func (s *service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssueResult, error) {
	req.Email = emailaddr.Normalize(req.Email)
	req.University = strings.TrimSpace(req.University)

	if !emailaddr.HasSuffix(req.Email, s.suffix) {
		observability.CodesIssued.WithLabelValues("invalid_domain").Inc()
		return nil, fmt.Errorf("email must end in %s: %w", s.suffix, domain.ErrInvalidEmailDomain)
	}
	if err := validate.Struct(req); err != nil {
		observability.CodesIssued.WithLabelValues("bad_request").Inc()
		return nil, err
	}
	if s.store == nil {
		observability.CodesIssued.WithLabelValues("config_error").Inc()
		return nil, fmt.Errorf("verification store not configured: %w", domain.ErrConfiguration)
	}

	now := s.now()
	v := &domain.EmailVerification{
		ID:         id.New(),
		Email:      req.Email,
		University: req.University,
		ExpiresAt:  now.Add(s.ttl).UnixMilli(),
		CreatedAt:  now.UTC(),
	}
	if err := s.persist(ctx, v); err != nil {
		observability.CodesIssued.WithLabelValues("persistence_error").Inc()
		s.log.ErrorContext(ctx, "failed to store verification code",
			"verification_id", v.ID, "email_fp", emailaddr.Fingerprint(v.Email), "err", err)
		return nil, err
	}
	observability.CodesIssued.WithLabelValues("issued").Inc()

	attrs := []any{
		"verification_id", v.ID,
		"email_fp", emailaddr.Fingerprint(v.Email),
		"university", v.University,
		"expires_at", v.ExpiryTime().UTC().Format(time.RFC3339),
	}
	if s.mode == domain.Development {
		attrs = append(attrs, "email", v.Email, "code", v.Code)
	}
	s.log.InfoContext(ctx, "verification code issued", attrs...)

	s.dispatch(ctx, v)

	res := &domain.IssueResult{ExpiresAt: v.ExpiryTime()}
	if s.mode == domain.Development {
		res.Code = v.Code
	}
	return res, nil
}

// persist draws a code and stores v, drawing again when the store reports the
// email already holds that exact code.
func (s *service) persist(ctx context.Context, v *domain.EmailVerification) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		v.Code = code
		err = s.store.Create(ctx, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		s.log.WarnContext(ctx, "verification code collided, regenerating", "attempt", attempt)
	}
	return fmt.Errorf("%w: no free code after %d attempts", domain.ErrPersistence, maxCodeAttempts)
}

// dispatch sends the email in the background once the record is durable.
// The send outlives the request but is bounded by deliveryTimeout; failures
// and panics are logged and counted, never returned.
func (s *service) dispatch(ctx context.Context, v *domain.EmailVerification) {
	if s.notifier == nil {
		s.log.WarnContext(ctx, "no email notifier configured, skipping delivery", "verification_id", v.ID)
		return
	}
	msg, err := s.renderer.Render(v, s.ttl)
	if err != nil {
		observability.Deliveries.WithLabelValues(s.channel, "render_error").Inc()
		s.log.ErrorContext(ctx, "failed to render verification email", "verification_id", v.ID, "err", err)
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	verificationID := v.ID
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				observability.Deliveries.WithLabelValues(s.channel, "failed").Inc()
				s.log.Error("verification email delivery panicked",
					"verification_id", verificationID, "err", fmt.Errorf("%w: %v", domain.ErrDelivery, r))
			}
		}()

		if err := s.notifier.Deliver(dctx, msg); err != nil {
			observability.Deliveries.WithLabelValues(s.channel, "failed").Inc()
			s.log.Error("verification email delivery failed",
				"verification_id", verificationID, "channel", s.channel, "err", fmt.Errorf("%w: %w", domain.ErrDelivery, err))
			return
		}
		observability.Deliveries.WithLabelValues(s.channel, "sent").Inc()
	}()
}

func (s *service) Validate(ctx context.Context, req domain.ValidateRequest) (*domain.ValidateResult, error) {
	req.Email = emailaddr.Normalize(req.Email)
	if err := validate.Struct(req); err != nil {
		if errors.Is(err, domain.ErrMissingFields) {
			observability.CodesValidated.WithLabelValues("missing_fields").Inc()
		}
		return nil, err
	}
	if s.store == nil {
		observability.CodesValidated.WithLabelValues("config_error").Inc()
		return nil, fmt.Errorf("verification store not configured: %w", domain.ErrConfiguration)
	}

	err := s.store.Consume(ctx, req.Email, req.Code, s.now())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		observability.CodesValidated.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidOrExpiredCode
	case err != nil:
		observability.CodesValidated.WithLabelValues("persistence_error").Inc()
		s.log.ErrorContext(ctx, "failed to verify code", "email_fp", emailaddr.Fingerprint(req.Email), "err", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	observability.CodesValidated.WithLabelValues("verified").Inc()
	s.log.InfoContext(ctx, "email verified", "email_fp", emailaddr.Fingerprint(req.Email))

	res := &domain.ValidateResult{Email: req.Email}
	if s.signer != nil {
		tok, err := s.signer.Sign(req.Email)
		if err != nil {
			// The code is already consumed; the caller still gets its success.
			s.log.WarnContext(ctx, "could not sign verification proof token", "err", err)
		} else {
			res.ProofToken = tok
		}
	}
	return res, nil
}

func (s *service) Wait() { s.inflight.Wait() }
