// Package tokens holds the access-token claim set and the opaque
// refresh-token value helpers shared by the gateway and the identity service.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	refreshValueLen = 40
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the signed claim set carried by an access token.
// It is verifiable by signature alone; nothing here is looked up server-side.
type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an HS256 access token for the user with a fixed
// 15-minute lifetime.
func NewAccessToken(secret []byte, userID, username string, now time.Time) (string, time.Time, error) {
	exp := now.Add(AccessTokenTTL)
	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// AccessClaimsFromToken verifies signature and expiry and returns the claims.
func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// NewRefreshValue returns a fresh high-entropy opaque refresh-token value.
func NewRefreshValue() (string, error) {
	buf := make([]byte, refreshValueLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Digest is the storage form of a refresh value; raw values are never persisted.
func Digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
