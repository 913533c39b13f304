// Package jwt implements HMAC-SHA256 signed tokens carrying tenant-scoped
// access claims. Tokens double as a tenant-resolution signal: the
// tenant_slug claim is the highest-priority identifier during request
// resolution.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

var (
	ErrMissingSigningKey       = errors.New("jwt: missing signing key")
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrInvalidSignature        = errors.New("jwt: invalid signature")
	ErrExpiredToken            = errors.New("jwt: token expired")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// AccessClaims is the claim set issued on login and register. TenantID and
// TenantSlug bind the token to one tenant; a token issued under tenant A
// never resolves requests for tenant B.
type AccessClaims struct {
	Subject    string `json:"sub"`
	TenantID   string `json:"tenantId"`
	TenantSlug string `json:"tenantSlug"`
	Role       string `json:"role,omitempty"`
	ExpiresAt  int64  `json:"exp,omitempty"`
	IssuedAt   int64  `json:"iat,omitempty"`
}

// Valid checks temporal claims. Zero values are treated as unset.
func (c AccessClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Service signs and verifies tokens with a shared HMAC key.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

// New creates a token service. The key should be at least 32 bytes.
func New(signingKey string, ttl time.Duration) (*Service, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{signingKey: []byte(signingKey), ttl: ttl}, nil
}

// Issue signs claims, stamping iat and exp from the service TTL.
func (s *Service) Issue(claims AccessClaims) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(s.ttl).Unix()

	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", fmt.Errorf("jwt: marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("jwt: marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Verify validates a token and returns its claims. It checks the
// signature in constant time, rejects unexpected algorithms, and
// validates expiry.
func (s *Service) Verify(token string) (AccessClaims, error) {
	var claims AccessClaims

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(s.sign(payload))) != 1 {
		return claims, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return claims, ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return claims, ErrInvalidToken
	}
	if h.Algorithm != headerAlgorithm {
		return claims, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return claims, ErrInvalidToken
	}
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return claims, ErrInvalidToken
	}

	if err := claims.Valid(); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
