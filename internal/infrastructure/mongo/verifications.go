package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	drv "go.mongodb.org/mongo-driver/mongo"

	"github.com/peachlease/edu-verify/internal/domain"
)

// VerificationRepo stores email verification codes in MongoDB.
type VerificationRepo struct {
	coll *drv.Collection
}

func NewVerificationRepo(db *drv.Database) *VerificationRepo {
	return &VerificationRepo{coll: db.Collection(VerificationsCollection)}
}

// Create inserts v; the unique (email, code) index turns a repeat into domain.ErrConflict.
func (r *VerificationRepo) Create(ctx context.Context, v *domain.EmailVerification) error {
	_, err := r.coll.InsertOne(ctx, v)
	if drv.IsDuplicateKeyError(err) {
		return fmt.Errorf("verification code already issued for email: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

// Consume marks the matching unverified, unexpired document as verified.
// The eligibility predicate sits in the UpdateOne filter, which MongoDB
// applies atomically per document.
func (r *VerificationRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	res, err := r.coll.UpdateOne(ctx, consumeFilter(email, code, now), consumeUpdate(now))
	if err != nil {
		return fmt.Errorf("consume verification: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no consumable verification: %w", domain.ErrNotFound)
	}
	return nil
}

func consumeFilter(email, code string, now time.Time) bson.M {
	return bson.M{
		"email":      email,
		"code":       code,
		"verified":   false,
		"expires_at": bson.M{"$gt": now.UnixMilli()},
	}
}

func consumeUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"verified":    true,
		"verified_at": now.UnixMilli(),
	}}
}
