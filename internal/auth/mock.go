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

// DemoPassword unlocks every seeded demo account.
const DemoPassword = "folio-demo"

// MockProvider is the demo-mode Provider: a fixed set of in-memory
// accounts, one per role, plus any users signed up during the session.
// Tokens are real JWTs so the rest of the stack behaves identically in
// both modes.
type MockProvider struct {
	ttl   time.Duration
	store *rbac.InMemory

	mu    sync.RWMutex
	users map[string]rbac.User // keyed by lower-cased email
}

// NewMockProvider seeds the demo accounts. The optional rbac store
// receives the same users so role mutations stay visible to the
// access-control engine.
func NewMockProvider(ttl time.Duration, seedInto *rbac.InMemory) *MockProvider {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	p := &MockProvider{
		ttl:   ttl,
		store: seedInto,
		users: make(map[string]rbac.User),
	}
	now := time.Now().UTC()
	seeds := []rbac.User{
		{ID: ids.New(), Email: "subscriber@folio.dev", Name: "Demo Subscriber", Role: rbac.RoleSubscriber},
		{ID: ids.New(), Email: "editor@folio.dev", Name: "Demo Editor", Role: rbac.RoleEditor},
		{ID: ids.New(), Email: "admin@folio.dev", Name: "Demo Admin", Role: rbac.RoleAdmin},
		{ID: ids.New(), Email: "owner@folio.dev", Name: "Demo Owner", Role: rbac.RoleSuperAdmin},
	}
	for _, u := range seeds {
		u.Status = rbac.UserStatusActive
		u.CreatedAt = now
		u.UpdatedAt = now
		p.users[u.Email] = u
		if seedInto != nil {
			_ = seedInto.PutUser(context.Background(), u)
		}
	}
	return p
}

func (p *MockProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password != DemoPassword {
		return Session{}, ErrInvalidCredentials
	}
	p.mu.RLock()
	user, ok := p.users[email]
	p.mu.RUnlock()
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	return newSession(user, p.ttl)
}

func (p *MockProvider) SignUp(ctx context.Context, email, name, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p.mu.Lock()
	if _, exists := p.users[email]; exists {
		p.mu.Unlock()
		return Session{}, ErrAlreadyExists
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
	p.users[email] = user
	p.mu.Unlock()
	if p.store != nil {
		if err := p.store.PutUser(ctx, user); err != nil {
			return Session{}, err
		}
	}
	return newSession(user, p.ttl)
}

// SignOut is a no-op in demo mode; demo tokens simply age out.
func (p *MockProvider) SignOut(ctx context.Context, token string) error {
	if _, err := ParseAndValidate(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (p *MockProvider) Verify(ctx context.Context, token string) (rbac.User, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return rbac.User{}, ErrInvalidToken
	}
	// Prefer the rbac store so role promotions made after sign-in are
	// visible on the next verified request.
	if p.store != nil {
		if user, err := p.store.GetUser(ctx, claims.Subject); err == nil {
			return user, nil
		}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		if u.ID == claims.Subject {
			return u, nil
		}
	}
	return rbac.User{}, ErrInvalidToken
}
