package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio.dev/internal/ids"
)

// Service answers "can this user do X" and manages the upgrade-request
// lifecycle. Authorization failures are reported before existence checks
// so unauthorized callers learn nothing about request state.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the access-control engine over a request/user store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("rbac: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RequestUpgrade files a pending role-upgrade petition for user. The target
// must be strictly above the user's current role, the reason non-empty, and
// the user must not already have a pending request.
func (s *Service) RequestUpgrade(ctx context.Context, user User, requested Role, reason string) (RoleRequest, error) {
	if strings.TrimSpace(user.ID) == "" {
		return RoleRequest{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !requested.Above(user.Role) {
		return RoleRequest{}, fmt.Errorf("%w: %s -> %s", ErrInvalidRoleTarget, user.Role, requested)
	}
	if strings.TrimSpace(reason) == "" {
		return RoleRequest{}, ErrEmptyReason
	}
	if _, exists, err := s.store.PendingRequestForUser(ctx, user.ID); err != nil {
		return RoleRequest{}, err
	} else if exists {
		return RoleRequest{}, ErrDuplicatePending
	}

	req := RoleRequest{
		ID:            ids.New(),
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		CurrentRole:   user.Role,
		RequestedRole: requested,
		Reason:        strings.TrimSpace(reason),
		Status:        RequestPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return RoleRequest{}, err
	}
	return req, nil
}

// ApproveRequest resolves a pending request and promotes the requesting
// user to the requested role in one atomic unit.
func (s *Service) ApproveRequest(ctx context.Context, actor User, requestID string) (RoleRequest, error) {
	if !HasPermission(actor.Role, PermManageUsers) {
		return RoleRequest{}, ErrUnauthorized
	}
	return s.store.ResolveRequest(ctx, requestID, RequestApproved, actor.ID, s.now().UTC(), true)
}

// RejectRequest resolves a pending request as denied. The target user's
// role is never touched.
func (s *Service) RejectRequest(ctx context.Context, actor User, requestID string) (RoleRequest, error) {
	if !HasPermission(actor.Role, PermManageUsers) {
		return RoleRequest{}, ErrUnauthorized
	}
	return s.store.ResolveRequest(ctx, requestID, RequestDenied, actor.ID, s.now().UTC(), false)
}

// CancelRequest lets the author of a pending request withdraw it. Only the
// requesting user may cancel; admins use RejectRequest instead. Non-authors
// get ErrRequestNotFound so request ids cannot be probed for existence.
func (s *Service) CancelRequest(ctx context.Context, actor User, requestID string) (RoleRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return RoleRequest{}, err
	}
	if req.UserID != actor.ID {
		return RoleRequest{}, ErrRequestNotFound
	}
	return s.store.ResolveRequest(ctx, requestID, RequestCancelled, actor.ID, s.now().UTC(), false)
}

// UpdateUserRole is the direct administrative override. Unlike the
// self-service path it is not restricted to upgrades; that asymmetry is
// deliberate.
func (s *Service) UpdateUserRole(ctx context.Context, actor User, userID string, newRole Role) (User, error) {
	if !HasPermission(actor.Role, PermManageUsers) {
		return User{}, ErrUnauthorized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !newRole.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, newRole)
	}
	return s.store.SetUserRole(ctx, userID, newRole)
}

// ListRequests returns requests filtered by status; an empty status means
// all. Restricted to user managers.
func (s *Service) ListRequests(ctx context.Context, actor User, status RequestStatus) ([]RoleRequest, error) {
	if !HasPermission(actor.Role, PermManageUsers) {
		return nil, ErrUnauthorized
	}
	return s.store.ListRequests(ctx, status)
}

// Upgrades reports the legal self-service upgrade targets for the user.
func (s *Service) Upgrades(user User) []Role {
	return AvailableUpgrades(user.Role)
}
