package rbac

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, users ...User) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	ctx := context.Background()
	for _, u := range users {
		if err := store.PutUser(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(store, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func subscriber(id string) User {
	return User{ID: id, Email: id + "@example.com", Name: id, Role: RoleSubscriber, Status: UserStatusActive}
}

func admin(id string) User {
	u := subscriber(id)
	u.Role = RoleAdmin
	return u
}

func TestRequestUpgradeCreatesPending(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	svc, store := newTestService(t, user)

	req, err := svc.RequestUpgrade(ctx, user, RoleEditor, "  I write the studio blog  ")
	if err != nil {
		t.Fatalf("request upgrade: %v", err)
	}
	if req.Status != RequestPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.CurrentRole != RoleSubscriber || req.RequestedRole != RoleEditor {
		t.Fatalf("role snapshot wrong: %s -> %s", req.CurrentRole, req.RequestedRole)
	}
	if req.Reason != "I write the studio blog" {
		t.Fatalf("reason not trimmed: %q", req.Reason)
	}
	if req.ID == "" || req.CreatedAt.IsZero() {
		t.Fatal("id and created_at must be set")
	}

	stored, err := store.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("stored request: %v", err)
	}
	if stored.Status != RequestPending {
		t.Fatalf("stored status: %s", stored.Status)
	}
}

func TestRequestUpgradeValidation(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	top := User{ID: "boss", Role: RoleSuperAdmin, Status: UserStatusActive}
	svc, _ := newTestService(t, user, top)

	cases := []struct {
		name      string
		user      User
		requested Role
		reason    string
		wantErr   error
	}{
		{"same role", user, RoleSubscriber, "reason", ErrInvalidRoleTarget},
		{"below current", admin("a1"), RoleEditor, "reason", ErrInvalidRoleTarget},
		{"unknown role", user, Role("owner"), "reason", ErrInvalidRoleTarget},
		{"top role has no upgrades", top, RoleSuperAdmin, "reason", ErrInvalidRoleTarget},
		{"empty reason", user, RoleEditor, "   ", ErrEmptyReason},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RequestUpgrade(ctx, tc.user, tc.requested, tc.reason); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRequestUpgradeDuplicatePending(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	svc, _ := newTestService(t, user)

	if _, err := svc.RequestUpgrade(ctx, user, RoleEditor, "first"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.RequestUpgrade(ctx, user, RoleAdmin, "second"); !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}
}

func TestApproveRequestPromotesUser(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	reviewer := admin("boss")
	svc, store := newTestService(t, user, reviewer)

	req, err := svc.RequestUpgrade(ctx, user, RoleEditor, "portfolio updates")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	resolved, err := svc.ApproveRequest(ctx, reviewer, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resolved.Status != RequestApproved {
		t.Fatalf("status: %s", resolved.Status)
	}
	if resolved.ReviewedBy != reviewer.ID || resolved.ReviewedAt == nil {
		t.Fatal("reviewer metadata missing")
	}

	promoted, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if promoted.Role != RoleEditor {
		t.Fatalf("expected promoted role editor, got %s", promoted.Role)
	}

	// Terminal: a second approval must fail.
	if _, err := svc.ApproveRequest(ctx, reviewer, req.ID); !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
}

func TestApproveRequestUnauthorizedIsNoOp(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	intruder := subscriber("u2")
	svc, store := newTestService(t, user, intruder)

	req, err := svc.RequestUpgrade(ctx, user, RoleEditor, "reason")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.ApproveRequest(ctx, intruder, req.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	unchanged, _ := store.GetRequest(ctx, req.ID)
	if unchanged.Status != RequestPending || unchanged.ReviewedBy != "" {
		t.Fatalf("request modified on unauthorized attempt: %+v", unchanged)
	}
	target, _ := store.GetUser(ctx, user.ID)
	if target.Role != RoleSubscriber {
		t.Fatalf("role modified on unauthorized attempt: %s", target.Role)
	}
}

func TestApproveRequestAuthorizationBeforeExistence(t *testing.T) {
	ctx := context.Background()
	intruder := subscriber("u2")
	svc, _ := newTestService(t, intruder)

	// Unauthorized callers must not learn whether a request exists.
	if _, err := svc.ApproveRequest(ctx, intruder, "missing-id"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRejectRequestLeavesRoleUntouched(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	reviewer := admin("boss")
	svc, store := newTestService(t, user, reviewer)

	req, _ := svc.RequestUpgrade(ctx, user, RoleAdmin, "reason")
	resolved, err := svc.RejectRequest(ctx, reviewer, req.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resolved.Status != RequestDenied {
		t.Fatalf("status: %s", resolved.Status)
	}
	target, _ := store.GetUser(ctx, user.ID)
	if target.Role != RoleSubscriber {
		t.Fatalf("reject must not mutate role, got %s", target.Role)
	}
}

func TestApproveMissingRequest(t *testing.T) {
	ctx := context.Background()
	reviewer := admin("boss")
	svc, _ := newTestService(t, reviewer)

	if _, err := svc.ApproveRequest(ctx, reviewer, "nope"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestCancelRequestOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	user := subscriber("u1")
	other := subscriber("u2")
	svc, store := newTestService(t, user, other)

	req, _ := svc.RequestUpgrade(ctx, user, RoleEditor, "reason")

	// A non-author cannot learn whether the id exists.
	if _, err := svc.CancelRequest(ctx, other, req.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound for non-author, got %v", err)
	}

	cancelled, err := svc.CancelRequest(ctx, user, req.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != RequestCancelled {
		t.Fatalf("status: %s", cancelled.Status)
	}
	// Terminal once cancelled.
	if _, err := svc.CancelRequest(ctx, user, req.ID); !errors.Is(err, ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
	// Author may file a fresh request afterwards.
	if _, err := svc.RequestUpgrade(ctx, user, RoleEditor, "try again"); err != nil {
		t.Fatalf("new request after cancel: %v", err)
	}
	pending, _ := store.ListRequests(ctx, RequestPending)
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending request, got %d", len(pending))
	}
}

func TestUpdateUserRoleOverride(t *testing.T) {
	ctx := context.Background()
	target := admin("a1")
	actor := admin("boss")
	svc, _ := newTestService(t, target, actor)

	// The override path allows downgrades; only the self-service path is
	// monotonic.
	updated, err := svc.UpdateUserRole(ctx, actor, target.ID, RoleSubscriber)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != RoleSubscriber {
		t.Fatalf("expected subscriber, got %s", updated.Role)
	}

	if _, err := svc.UpdateUserRole(ctx, subscriber("nobody"), target.ID, RoleEditor); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.UpdateUserRole(ctx, actor, target.ID, Role("czar")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListRequestsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	u1, u2 := subscriber("u1"), subscriber("u2")
	reviewer := admin("boss")
	svc, _ := newTestService(t, u1, u2, reviewer)

	r1, _ := svc.RequestUpgrade(ctx, u1, RoleEditor, "one")
	if _, err := svc.RequestUpgrade(ctx, u2, RoleEditor, "two"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.ApproveRequest(ctx, reviewer, r1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pending, err := svc.ListRequests(ctx, reviewer, RequestPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].UserID != u2.ID {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	all, _ := svc.ListRequests(ctx, reviewer, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}

	if _, err := svc.ListRequests(ctx, u2, RequestPending); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
