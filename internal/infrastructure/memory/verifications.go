// Package memory is an in-process verification store for development and
// tests. It follows the same contract as the DynamoDB and MongoDB stores.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
)

type key struct{ email, code string }

// VerificationRepo keeps every issued code keyed by email and code.
type VerificationRepo struct {
	mu    sync.Mutex
	items map[key]domain.EmailVerification
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{items: make(map[key]domain.EmailVerification)}
}

func (r *VerificationRepo) Create(_ context.Context, v *domain.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{v.Email, v.Code}
	if _, ok := r.items[k]; ok {
		return fmt.Errorf("verification code already issued for email: %w", domain.ErrConflict)
	}
	r.items[k] = *v
	return nil
}

func (r *VerificationRepo) Consume(_ context.Context, email, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{email, code}
	v, ok := r.items[k]
	if !ok || !v.Consumable(now) {
		return fmt.Errorf("no consumable verification: %w", domain.ErrNotFound)
	}
	v.Verified = true
	v.VerifiedAt = now.UnixMilli()
	r.items[k] = v
	return nil
}

// Get returns a copy of the stored record.
func (r *VerificationRepo) Get(email, code string) (domain.EmailVerification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key{email, code}]
	return v, ok
}

// Len reports how many records exist.
func (r *VerificationRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
