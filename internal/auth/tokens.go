// package auth implements first-party credential issuance: signed access
// tokens, refresh token rotation and password hashing.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

// AccessClaims is the payload of a minted access token.
//
// The subject carries the full public user record as a snapshot taken at
// issuance time; validity is determined purely by signature and expiry,
// never by a database lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	User models.User `json:"subject"`
}

// MintAccessToken signs a short-lived HS256 token embedding the user snapshot.
func MintAccessToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		User: *user,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// ParseAccessToken verifies signature and expiry and returns the embedded
// user snapshot.
func ParseAccessToken(tokenString string, secret []byte) (*models.User, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidAccessToken, err)
	}

	if !token.Valid {
		return nil, shared.ErrInvalidAccessToken
	}

	return &claims.User, nil
}
