package domain

import "time"

// VerificationState is derived from a record and a clock reading; it is never stored.
type VerificationState string

const (
	StatePending  VerificationState = "pending"
	StateExpired  VerificationState = "expired"
	StateConsumed VerificationState = "consumed"
)

// EmailVerification is one issued code.
// PK: email, SK: code. ExpiresAt and VerifiedAt are Unix milliseconds.
type EmailVerification struct {
	ID         string    `json:"id" dynamodbav:"verification_id" bson:"verification_id"`
	Email      string    `json:"email" dynamodbav:"email" bson:"email"`
	Code       string    `json:"-" dynamodbav:"code" bson:"code"`
	University string    `json:"university,omitempty" dynamodbav:"university" bson:"university,omitempty"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at" bson:"expires_at"`
	Verified   bool      `json:"verified" dynamodbav:"verified" bson:"verified"`
	VerifiedAt int64     `json:"verified_at,omitempty" dynamodbav:"verified_at" bson:"verified_at"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
}

// State reports where the record sits in its lifecycle at now.
func (v *EmailVerification) State(now time.Time) VerificationState {
	switch {
	case v.Verified:
		return StateConsumed
	case now.UnixMilli() >= v.ExpiresAt:
		return StateExpired
	default:
		return StatePending
	}
}

// Consumable reports whether a validate call at now may accept this record.
func (v *EmailVerification) Consumable(now time.Time) bool {
	return v.State(now) == StatePending
}

// ExpiryTime returns ExpiresAt as a time.Time.
func (v *EmailVerification) ExpiryTime() time.Time {
	return time.UnixMilli(v.ExpiresAt)
}

// IssueRequest is the body of POST /send-email-verification.
type IssueRequest struct {
	Email      string `json:"email" validate:"max=254"`
	University string `json:"university" validate:"max=200"`
}

// ValidateRequest is the body of POST /verify-email-code.
type ValidateRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	Code  string `json:"code" validate:"required,max=64"`
}

// IssueResult carries the raw code only in Development mode.
type IssueResult struct {
	Code      string
	ExpiresAt time.Time
}

// ValidateResult is returned on a successful validate. ProofToken is empty
// unless a token signer is configured.
type ValidateResult struct {
	Email      string
	ProofToken string
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}
