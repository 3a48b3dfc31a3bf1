package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any credential that fails verification
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified principal behind a bearer token
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Verifier validates a bearer credential issued by the identity provider
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims represents the identity token claims
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HMAC-signed identity tokens
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier creates a verifier. Empty issuer or audience disables that check.
func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify validates signature, expiry, issuer and audience and returns the identity
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("identity secret not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// GenerateToken signs an identity token with the same claims the verifier expects
func GenerateToken(secret, issuer, audience string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("identity secret not configured")
	}

	now := time.Now()
	claims := &Claims{
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
