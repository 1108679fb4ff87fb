// Package testtoken mints signed credentials for tests across goGate packages.
package testtoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Key signs every minted token. Decoding never verifies it.
var Key = []byte("goGate-test-signing-key-0123456789")

// Mint signs claims with HS256.
func Mint(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(Key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// For mints a credential for subject with roles that expires at exp.
func For(t testing.TB, subject string, exp time.Time, roles ...string) string {
	t.Helper()
	return Mint(t, jwt.MapClaims{
		"sub":    subject,
		"userId": 7,
		"roles":  roles,
		"exp":    exp.Unix(),
		"iat":    exp.Add(-time.Hour).Unix(),
	})
}
