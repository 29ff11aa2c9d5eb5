package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrEmail          = "email"
	attrCode           = "code"
	attrVerificationID = "verification_id"
	attrExpiresAt      = "expires_at"
	attrVerified       = "verified"
	attrVerifiedAt     = "verified_at"
)
