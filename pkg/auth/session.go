package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"linire-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName = "admin_session"
	sessionIssuer     = "linire-backend"
	sessionAudience   = "admin"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrLoginDisabled      = errors.New("auth: admin login not configured")
	ErrInvalidSession     = errors.New("auth: invalid session")
)

type SessionConfig struct {
	Username     string
	PasswordHash string // bcrypt
	Secret       string // HS256 signing key
	Lifetime     time.Duration
}

// SessionManager checks the single admin's credentials and issues signed
// session tokens carried in a cookie.
type SessionManager struct {
	cfg SessionConfig
	now func() time.Time
}

func NewSessionManager(cfg SessionConfig) *SessionManager {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 2 * time.Hour
	}
	return &SessionManager{cfg: cfg, now: time.Now}
}

// Enabled reports whether login can succeed at all
func (m *SessionManager) Enabled() bool {
	return m.cfg.Username != "" && m.cfg.PasswordHash != "" && m.cfg.Secret != ""
}

func (m *SessionManager) Lifetime() time.Duration {
	return m.cfg.Lifetime
}

// CheckCredentials compares against the configured admin account
func (m *SessionManager) CheckCredentials(username, password string) error {
	if !m.Enabled() {
		return ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.cfg.Username)) == 1
	// Always run bcrypt so timing does not reveal a wrong username.
	passErr := bcrypt.CompareHashAndPassword([]byte(m.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Issue signs a session token for username
func (m *SessionManager) Issue(username string) (string, time.Time, error) {
	if m.cfg.Secret == "" {
		return "", time.Time{}, ErrLoginDisabled
	}

	now := m.now()
	expires := now.Add(m.cfg.Lifetime)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    sessionIssuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Parse validates a session token and returns the admin it belongs to
func (m *SessionManager) Parse(tokenString string) (domain.AdminPrincipal, error) {
	if m.cfg.Secret == "" || tokenString == "" {
		return domain.AdminPrincipal{}, ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return domain.AdminPrincipal{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	// Sessions for a renamed admin account stop working.
	if claims.Subject == "" || claims.Subject != m.cfg.Username {
		return domain.AdminPrincipal{}, ErrInvalidSession
	}
	return domain.AdminPrincipal{Username: claims.Subject}, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
