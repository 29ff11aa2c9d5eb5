package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Code bounds. Every code has exactly six digits.
const (
	Min = 100000
	Max = 999999
)

var span = big.NewInt(Max - Min + 1)

// NewCode draws a code uniformly from [Min, Max] using crypto/rand.
func NewCode() (string, error) {
	return NewCodeFrom(rand.Reader)
}

// NewCodeFrom draws a code from the given entropy source.
func NewCodeFrom(r io.Reader) (string, error) {
	n, err := rand.Int(r, span)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+Min), nil
}
