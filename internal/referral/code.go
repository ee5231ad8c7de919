// Package referral generates the short referral codes attached to user and
// merchant rows. Codes are attribution identifiers, not security tokens, so
// math/rand is sufficient.
package referral

import (
	"errors"
	"math/rand"
)

const (
	// CodeLength is the number of characters in a referral code.
	CodeLength = 8

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxAttempts bounds the uniqueness probe in EnsureUnique.
	MaxAttempts = 10
)

// ErrCodeSpaceExhausted is returned when every probe candidate was already
// taken. Callers must treat it as a terminal provisioning failure.
var ErrCodeSpaceExhausted = errors.New("failed to generate a unique referral code")

// ExistsFunc reports whether a candidate code is already taken within one
// entity's code space.
type ExistsFunc func(code string) (bool, error)

// Generate produces an 8-character code uniformly sampled from A-Z0-9,
// e.g. "QN8FEZ48".
func Generate() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// EnsureUnique generates candidates until one passes the exists check,
// giving up after MaxAttempts taken candidates. User and merchant codes live
// in disjoint spaces: the caller supplies a predicate scoped to one of them.
func EnsureUnique(exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code := Generate()
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
