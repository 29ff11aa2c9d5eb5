package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, r *VerificationRepo, email, code string) {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &domain.EmailVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: t0.Add(15 * time.Minute).UnixMilli(),
		CreatedAt: t0,
	}))
}

func TestCreate_DuplicateConflicts(t *testing.T) {
	r := NewVerificationRepo()
	seed(t, r, "a@uga.edu", "123456")
	err := r.Create(context.Background(), &domain.EmailVerification{Email: "a@uga.edu", Code: "123456"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, r.Len())
}

func TestConsume_SingleUse(t *testing.T) {
	r := NewVerificationRepo()
	seed(t, r, "a@uga.edu", "123456")

	require.NoError(t, r.Consume(context.Background(), "a@uga.edu", "123456", t0.Add(time.Minute)))
	v, ok := r.Get("a@uga.edu", "123456")
	require.True(t, ok)
	assert.True(t, v.Verified)
	assert.Equal(t, t0.Add(time.Minute).UnixMilli(), v.VerifiedAt)

	err := r.Consume(context.Background(), "a@uga.edu", "123456", t0.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsume_ExpiryBoundary(t *testing.T) {
	expires := t0.Add(15 * time.Minute)

	r := NewVerificationRepo()
	seed(t, r, "a@uga.edu", "123456")
	assert.ErrorIs(t, r.Consume(context.Background(), "a@uga.edu", "123456", expires), domain.ErrNotFound)
	assert.ErrorIs(t, r.Consume(context.Background(), "a@uga.edu", "123456", expires.Add(time.Millisecond)), domain.ErrNotFound)
	assert.NoError(t, r.Consume(context.Background(), "a@uga.edu", "123456", expires.Add(-time.Millisecond)))
}

func TestConsume_WrongCodeOrEmail(t *testing.T) {
	r := NewVerificationRepo()
	seed(t, r, "a@uga.edu", "123456")
	assert.ErrorIs(t, r.Consume(context.Background(), "a@uga.edu", "654321", t0), domain.ErrNotFound)
	assert.ErrorIs(t, r.Consume(context.Background(), "b@uga.edu", "123456", t0), domain.ErrNotFound)

	v, _ := r.Get("a@uga.edu", "123456")
	assert.False(t, v.Verified)
}

func TestConsume_ConcurrentCallersOneWinner(t *testing.T) {
	const n = 64
	r := NewVerificationRepo()
	seed(t, r, "a@uga.edu", "123456")

	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := r.Consume(context.Background(), "a@uga.edu", "123456", t0.Add(time.Minute)); err == nil {
				wins.Add(1)
			} else {
				losses.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(n-1), losses.Load())
}
