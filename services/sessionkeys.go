package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionKeys issues and validates the per-login session key echoed in the
// login response. Commands sent over an authenticated session must present
// it, which keeps a stolen session cookie useless on its own.
type SessionKeys struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionKeys creates a session key signer with the given HMAC secret
// and key lifetime.
func NewSessionKeys(secret string, ttl time.Duration) *SessionKeys {
	return &SessionKeys{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a session key binding the user to the session token.
func (k *SessionKeys) Issue(userID int64, sessionToken string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ID:        sessionToken,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign session key: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and expiry of a session key.
func (k *SessionKeys) Validate(key string) error {
	token, err := jwt.ParseWithClaims(key, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return k.secret, nil
	})
	if err != nil {
		return NewDomainError(ErrorTypeUnauthorized, "invalid session key", err)
	}
	if !token.Valid {
		return ErrInvalidSessionKey
	}
	return nil
}
