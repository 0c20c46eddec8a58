package rbac

import (
	"context"
	"time"
)

// Store describes persistence required by the access-control engine. Role
// and request state is mutated only through Service so the service remains
// the single point of invariant enforcement.
type Store interface {
	GetUser(ctx context.Context, userID string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetUserRole(ctx context.Context, userID string, role Role) (User, error)

	CreateRequest(ctx context.Context, req RoleRequest) error
	GetRequest(ctx context.Context, requestID string) (RoleRequest, error)
	// PendingRequestForUser reports whether the user already has a pending
	// request on file.
	PendingRequestForUser(ctx context.Context, userID string) (RoleRequest, bool, error)
	ListRequests(ctx context.Context, status RequestStatus) ([]RoleRequest, error)
	// ResolveRequest moves a pending request into a terminal status and,
	// when applyRole is set, updates the requesting user's role to the
	// requested role. Both mutations are applied as one atomic unit: no
	// reader may observe an approved request alongside a stale role.
	// Returns ErrRequestNotFound or ErrRequestNotPending on precondition
	// failure, leaving all state unmodified.
	ResolveRequest(ctx context.Context, requestID string, status RequestStatus, reviewerID string, reviewedAt time.Time, applyRole bool) (RoleRequest, error)
}
