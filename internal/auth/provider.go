package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"folio.dev/internal/ids"
	"folio.dev/internal/rbac"
)

const defaultSessionTTL = 15 * time.Minute

// Session is an issued sign-in: the bearer token plus the resolved user.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      rbac.User `json:"user"`
}

// Provider is the single authentication surface. Exactly two
// implementations exist: MockProvider for demo mode and StoreProvider
// backed by the user store. The choice is made once at construction;
// call sites never branch on the mode.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, name, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	// Verify resolves a bearer token into the current user record. The
	// role always comes from the store, not from token claims.
	Verify(ctx context.Context, token string) (rbac.User, error)
}

// UserStore is the persistence surface StoreProvider needs.
type UserStore interface {
	CreateUser(ctx context.Context, user rbac.User, passwordHash string) (rbac.User, error)
	FindUserByEmail(ctx context.Context, email string) (rbac.User, string, error)
	GetUser(ctx context.Context, userID string) (rbac.User, error)
}

// StoreProvider authenticates against persisted users with bcrypt
// credentials. Sign-out is tracked as a revoked token id until expiry.
type StoreProvider struct {
	store UserStore
	ttl   time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewStoreProvider wires the real authentication path.
func NewStoreProvider(store UserStore, ttl time.Duration) *StoreProvider {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &StoreProvider{
		store:   store,
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

func (p *StoreProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	user, hash, err := p.store.FindUserByEmail(ctx, email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if user.Status != rbac.UserStatusActive {
		return Session{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(hash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return newSession(user, p.ttl)
}

func (p *StoreProvider) SignUp(ctx context.Context, email, name, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return Session{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	user := rbac.User{
		ID:        ids.New(),
		Email:     email,
		Name:      name,
		Role:      rbac.RoleSubscriber,
		Status:    rbac.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := p.store.CreateUser(ctx, user, hash)
	if err != nil {
		return Session{}, err
	}
	return newSession(created, p.ttl)
}

func (p *StoreProvider) SignOut(ctx context.Context, token string) error {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return ErrInvalidToken
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	p.pruneLocked()
	return nil
}

func (p *StoreProvider) Verify(ctx context.Context, token string) (rbac.User, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return rbac.User{}, ErrInvalidToken
	}
	p.mu.Lock()
	_, out := p.revoked[claims.ID]
	p.mu.Unlock()
	if out {
		return rbac.User{}, ErrInvalidToken
	}
	user, err := p.store.GetUser(ctx, claims.Subject)
	if err != nil {
		return rbac.User{}, ErrInvalidToken
	}
	if user.Status != rbac.UserStatusActive {
		return rbac.User{}, ErrInvalidToken
	}
	return user, nil
}

// pruneLocked drops revocation records for tokens that expired anyway.
func (p *StoreProvider) pruneLocked() {
	now := time.Now().UTC()
	for jti, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, jti)
		}
	}
}

func newSession(user rbac.User, ttl time.Duration) (Session, error) {
	token, err := GenerateToken(user.ID, user.Role, ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
