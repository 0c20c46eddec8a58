package rbac

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Used by
// tests and by demo mode; production runs on the Postgres store.
type InMemory struct {
	mu       sync.RWMutex
	users    map[string]*User
	requests map[string]*RoleRequest
	order    []string // request ids in insertion order
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[string]*User),
		requests: make(map[string]*RoleRequest),
	}
}

// PutUser inserts or replaces a user record.
func (s *InMemory) PutUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemory) GetUser(ctx context.Context, userID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (s *InMemory) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *InMemory) SetUserRole(ctx context.Context, userID string, role Role) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (s *InMemory) CreateRequest(ctx context.Context, req RoleRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := req
	s.requests[req.ID] = &cp
	s.order = append(s.order, req.ID)
	return nil
}

func (s *InMemory) GetRequest(ctx context.Context, requestID string) (RoleRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return RoleRequest{}, ErrRequestNotFound
	}
	return *req, nil
}

func (s *InMemory) PendingRequestForUser(ctx context.Context, userID string) (RoleRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		req := s.requests[id]
		if req.UserID == userID && req.Status == RequestPending {
			return *req, true, nil
		}
	}
	return RoleRequest{}, false, nil
}

func (s *InMemory) ListRequests(ctx context.Context, status RequestStatus) ([]RoleRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RoleRequest
	for _, id := range s.order {
		req := s.requests[id]
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

// ResolveRequest applies the terminal status and, for approvals, the role
// promotion under a single lock so readers never observe a half-applied
// resolution.
func (s *InMemory) ResolveRequest(ctx context.Context, requestID string, status RequestStatus, reviewerID string, reviewedAt time.Time, applyRole bool) (RoleRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return RoleRequest{}, ErrRequestNotFound
	}
	if req.Status != RequestPending {
		return RoleRequest{}, ErrRequestNotPending
	}
	if applyRole {
		u, ok := s.users[req.UserID]
		if !ok {
			return RoleRequest{}, ErrNotFound
		}
		u.Role = req.RequestedRole
		u.UpdatedAt = reviewedAt
	}
	req.Status = status
	req.ReviewedBy = reviewerID
	at := reviewedAt
	req.ReviewedAt = &at
	return *req, nil
}
