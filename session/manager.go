// Package session issues and validates the signed cookie token that identifies a logged-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is the fixed lifetime of a session measured from issuance.
const DefaultTTL = 7 * 24 * time.Hour

// Store keeps the server-side half of a session: session id -> user id.
type Store interface {
	Save(ctx context.Context, id string, userID uint, ttl time.Duration) error
	// Load reports ok=false for unknown or expired ids.
	Load(ctx context.Context, id string) (userID uint, ok bool, err error)
	// Delete must succeed for ids that do not exist.
	Delete(ctx context.Context, id string) error
}

// Claims carried inside the session token. The registered ID claim is the session id.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// Manager binds tokens to users through an injected Store.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// Option customises a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used for swallowed resolve failures.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager. secret signs every token and must not be empty.
func NewManager(store Store, secret []byte, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	m := &Manager{
		store:  store,
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL is the session lifetime; the cookie Max-Age uses the same value.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create issues a new session for userID.
func (m *Manager) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	now := m.now()

	if err := m.store.Save(ctx, id, userID, m.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Resolve returns the user bound to token. Anything invalid is reported as ok=false.
func (m *Manager) Resolve(ctx context.Context, token string) (uint, bool) {
	claims, err := m.parse(token, true)
	if err != nil {
		return 0, false
	}

	userID, ok, err := m.store.Load(ctx, claims.ID)
	if err != nil {
		m.log.Warn("session lookup failed", zap.Error(err))
		return 0, false
	}
	if !ok || userID != claims.UserID {
		return 0, false
	}
	return userID, true
}

// Destroy invalidates the session behind token. Empty, malformed or already destroyed
// tokens are a no-op; only a backing store failure is returned.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	// Expired tokens still name a session id worth deleting.
	claims, err := m.parse(token, false)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) parse(token string, checkExpiry bool) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
