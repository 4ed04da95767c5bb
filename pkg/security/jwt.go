package security

import (
	"errors"
	"fmt"
	"time"

	"barylstyle/contacts-api/pkg/util"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are embedded in every session token. The user ID is kept
// under "id".
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a HS256 token for userID that expires after ttl.
// Each token carries a random jti, so two logins never share a token.
func IssueSessionToken(secret []byte, userID string, ttl time.Duration) (string, time.Time, error) {
	jti, err := util.GenerateToken(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token ID, %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ParseSessionToken verifies the signature and expiry of token and returns
// the user ID it was issued for
func ParseSessionToken(secret []byte, token string) (string, error) {
	var claims SessionClaims

	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrInvalidToken, err)
	}

	if !t.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
