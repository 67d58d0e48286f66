// Package session binds requests to user IDs through a signed cookie.
// The payload is a JWT signed with HS256; tampering invalidates the
// token and the bearer falls back to anonymous. Logout only clears the
// client-side cookie: a token stolen before logout stays valid until
// its natural expiry, since no server-side revocation list is kept.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims is the JWT payload carried by the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a dedicated type for context values to avoid collisions.
type ContextKey string

// UserIDKey is the context key under which WithSession stores the
// authenticated user's ID.
const UserIDKey ContextKey = "userID"

// ErrEmptySigningKey is returned by New when no signing key is
// configured. The key must come from configuration; there is no
// built-in fallback secret.
var ErrEmptySigningKey = errors.New("session signing key must not be empty")

// Manager issues, clears, and resolves session cookies.
type Manager struct {
	cookieName string
	signingKey []byte
	tokenTTL   time.Duration
}

// New creates a Manager. It fails when signingKey is empty so a
// misconfigured deployment cannot silently issue unsigned sessions.
func New(cookieName string, signingKey []byte, tokenTTL time.Duration) (*Manager, error) {
	if len(signingKey) == 0 {
		return nil, ErrEmptySigningKey
	}

	return &Manager{
		cookieName: cookieName,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
	}, nil
}

// Login issues a fresh session for userID and sets it on the response.
// The cookie expires after the configured TTL with no sliding renewal.
func (m *Manager) Login(response http.ResponseWriter, userID string) error {
	now := time.Now()
	tokenString, err := m.buildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
		UserID: userID,
	})
	if err != nil {
		return err
	}

	http.SetCookie(response, &http.Cookie{
		Name:     m.cookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(m.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (m *Manager) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Logout clears the session cookie on the response.
func (m *Manager) Logout(response http.ResponseWriter) {
	http.SetCookie(response, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID resolves the session cookie on request to a user ID. The
// second return value is false for anonymous callers: no cookie, a
// tampered signature, or an expired token.
func (m *Manager) UserID(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", false
	}

	return claims.UserID, true
}

// WithSession is an HTTP middleware that resolves the session cookie
// and, for authenticated callers, stores the user ID in the request
// context. Anonymous requests pass through unchanged.
func (m *Manager) WithSession(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, ok := m.UserID(request)
		if !ok {
			h.ServeHTTP(response, request)

			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext returns the user ID stored by WithSession, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}
