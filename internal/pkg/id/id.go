package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Verification ids sort by issue time,
// which keeps audit listings for one email in order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
