package rbac

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput      = errors.New("rbac: invalid input")
	ErrNotFound          = errors.New("rbac: not found")
	ErrUnauthorized      = errors.New("rbac: unauthorized")
	ErrInvalidRoleTarget = errors.New("rbac: requested role is not a legal upgrade")
	ErrDuplicatePending  = errors.New("rbac: a pending request already exists for this user")
	ErrEmptyReason       = errors.New("rbac: reason is required")
	ErrRequestNotFound   = errors.New("rbac: role request not found")
	ErrRequestNotPending = errors.New("rbac: role request is not pending")
)

// User account statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// User is an account as seen by the access-control engine: identity plus
// current role. Credentials live with the auth provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestStatus is the lifecycle state of a RoleRequest.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestDenied    RequestStatus = "denied"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestDenied || s == RequestCancelled
}

// RoleRequest is one upgrade petition. Created pending; resolved exactly
// once to approved, denied, or cancelled.
type RoleRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	UserEmail     string        `json:"user_email"`
	CurrentRole   Role          `json:"current_role"`
	RequestedRole Role          `json:"requested_role"`
	Reason        string        `json:"reason"`
	Status        RequestStatus `json:"status"`
	ReviewedBy    string        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
