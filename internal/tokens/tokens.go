// Package tokens issues and verifies the two credential kinds: stateless
// HS256 access tokens and opaque refresh values whose SHA-256 digest is the
// only thing the database ever sees.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshEntropyBytes = 32

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func SignAccess(secret []byte, userID, role string, exp time.Time) (string, error) {
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// NewRefreshValue returns a fresh opaque refresh token: 32 bytes from
// crypto/rand, hex encoded. The value itself carries no claims.
func NewRefreshValue() (string, error) {
	buf := make([]byte, refreshEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
