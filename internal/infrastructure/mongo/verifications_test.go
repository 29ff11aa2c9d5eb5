package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeFilter_CarriesFullPredicate(t *testing.T) {
	now := time.UnixMilli(1772366700000)
	f := consumeFilter("student@uga.edu", "482913", now)

	assert.Equal(t, "student@uga.edu", f["email"])
	assert.Equal(t, "482913", f["code"])
	assert.Equal(t, false, f["verified"])
	assert.Equal(t, bson.M{"$gt": int64(1772366700000)}, f["expires_at"])
}

func TestConsumeUpdate_SetsVerified(t *testing.T) {
	u := consumeUpdate(time.UnixMilli(42))
	set, ok := u["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, true, set["verified"])
	assert.Equal(t, int64(42), set["verified_at"])
}

// The document field names must line up with the filter keys above.
func TestEmailVerification_BSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(domain.EmailVerification{
		ID:        "01HZY",
		Email:     "student@uga.edu",
		Code:      "482913",
		ExpiresAt: 1772366700000,
	})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	for _, k := range []string{"verification_id", "email", "code", "expires_at", "verified", "verified_at", "created_at"} {
		assert.Contains(t, doc, k)
	}
	assert.Equal(t, "482913", doc["code"])
}
