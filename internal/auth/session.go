package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when a required admin secret or credential is
// missing from the environment.
var ErrNotConfigured = errors.New("admin authentication is not configured")

// SessionLifetime is the fixed lifetime of an admin session token.
const SessionLifetime = 8 * time.Hour

// CookieName is the cookie carrying the admin session token.
const CookieName = "uph_admin_session"

// Claims represents the JWT claims of an admin session.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the verified admin behind a session token.
type Identity struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authenticator issues and verifies admin session tokens. It keeps no
// server-side session state.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator returns an Authenticator signing with secret. An empty
// secret yields an Authenticator that refuses to issue and verifies nothing.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Issue creates a signed session token for email, valid for SessionLifetime.
func (a *Authenticator) Issue(email string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("signing session: %w", ErrNotConfigured)
	}

	now := a.now()
	claims := Claims{
		Email: strings.TrimSpace(email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify returns the identity in token, or nil if the token is missing,
// malformed, expired or not signed with this Authenticator's secret.
func (a *Authenticator) Verify(tokenStr string) *Identity {
	if tokenStr == "" || len(a.secret) == 0 {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Email == "" {
		return nil
	}

	id := &Identity{Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id
}
