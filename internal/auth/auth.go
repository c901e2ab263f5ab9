// Package auth guards the admin API with a password login and a signed
// session cookie.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the admin session token.
	CookieName = "admin_session"

	// DefaultDuration is the session lifetime when none is configured.
	DefaultDuration = 24 * time.Hour

	subject = "admin"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidSession  = errors.New("invalid session")
)

// Config configures a Manager.
type Config struct {
	Password     string
	Secret       string
	Duration     time.Duration
	SecureCookie bool
}

// Manager issues and verifies admin sessions.
type Manager struct {
	password []byte
	secret   []byte
	duration time.Duration
	secure   bool
	now      func() time.Time
}

// NewManager creates a Manager. Without a secret the password signs tokens.
func NewManager(cfg Config) *Manager {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	secret := cfg.Secret
	if secret == "" {
		secret = cfg.Password
	}
	return &Manager{
		password: []byte(cfg.Password),
		secret:   []byte(secret),
		duration: cfg.Duration,
		secure:   cfg.SecureCookie,
		now:      time.Now,
	}
}

// Enabled reports whether an admin password is configured.
func (m *Manager) Enabled() bool {
	return len(m.password) > 0
}

// Login checks the password and returns a signed session token.
func (m *Manager) Login(password string) (string, error) {
	if !m.Enabled() || subtle.ConstantTimeCompare([]byte(password), m.password) != 1 {
		return "", ErrInvalidPassword
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify validates a session token.
func (m *Manager) Verify(tokenString string) error {
	if !m.Enabled() || tokenString == "" {
		return ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(subject),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return nil
}

// SetSessionCookie writes the session cookie.
func (m *Manager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.duration.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Manager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticated reports whether the request carries a valid session.
func (m *Manager) Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return m.Verify(cookie.Value) == nil
}

// Middleware rejects requests without a valid session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Authenticated(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
