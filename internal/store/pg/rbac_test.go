package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"folio.dev/internal/auth"
	"folio.dev/internal/rbac"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "user_name", "user_email", "from_role", "to_role",
		"reason", "status", "reviewed_by", "reviewed_at", "created_at",
	})
}

func TestResolveRequestApprovePromotesInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	reviewedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("select user_id, to_role, status.*from role_requests.*for update").
		WithArgs("rr-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "to_role", "status"}).
			AddRow("u-1", "editor", "pending"))
	mock.ExpectExec("update users").
		WithArgs("u-1", rbac.RoleEditor, reviewedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("update role_requests").
		WithArgs("rr-1", rbac.RequestApproved, "admin-1", reviewedAt).
		WillReturnRows(requestRows().
			AddRow("rr-1", "u-1", "Maya", "maya@folio.dev", "subscriber", "editor",
				"shipping the gallery", "approved", "admin-1", reviewedAt, reviewedAt.Add(-time.Hour)))
	mock.ExpectCommit()

	req, err := store.ResolveRequest(context.Background(), "rr-1", rbac.RequestApproved, "admin-1", reviewedAt, true)
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if req.Status != rbac.RequestApproved {
		t.Fatalf("unexpected status: %s", req.Status)
	}
	if req.ReviewedBy != "admin-1" {
		t.Fatalf("unexpected reviewer: %s", req.ReviewedBy)
	}
	if req.ReviewedAt == nil || !req.ReviewedAt.Equal(reviewedAt) {
		t.Fatalf("unexpected reviewed_at: %v", req.ReviewedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveRequestRejectSkipsRoleUpdate(t *testing.T) {
	store, mock := newMockStore(t)
	reviewedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("select user_id, to_role, status.*from role_requests.*for update").
		WithArgs("rr-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "to_role", "status"}).
			AddRow("u-1", "editor", "pending"))
	mock.ExpectQuery("update role_requests").
		WithArgs("rr-1", rbac.RequestDenied, "admin-1", reviewedAt).
		WillReturnRows(requestRows().
			AddRow("rr-1", "u-1", "Maya", "maya@folio.dev", "subscriber", "editor",
				"shipping the gallery", "denied", "admin-1", reviewedAt, reviewedAt.Add(-time.Hour)))
	mock.ExpectCommit()

	req, err := store.ResolveRequest(context.Background(), "rr-1", rbac.RequestDenied, "admin-1", reviewedAt, false)
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if req.Status != rbac.RequestDenied {
		t.Fatalf("unexpected status: %s", req.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveRequestNotPending(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select user_id, to_role, status.*from role_requests.*for update").
		WithArgs("rr-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "to_role", "status"}).
			AddRow("u-1", "editor", "approved"))
	mock.ExpectRollback()

	_, err := store.ResolveRequest(context.Background(), "rr-1", rbac.RequestApproved, "admin-1", time.Now(), true)
	if !errors.Is(err, rbac.ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolveRequestMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select user_id, to_role, status.*from role_requests.*for update").
		WithArgs("rr-404").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "to_role", "status"}))
	mock.ExpectRollback()

	_, err := store.ResolveRequest(context.Background(), "rr-404", rbac.RequestApproved, "admin-1", time.Now(), true)
	if !errors.Is(err, rbac.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	user := rbac.User{ID: "u-1", Email: "maya@folio.dev", Name: "Maya", Role: rbac.RoleSubscriber, Status: rbac.UserStatusActive}
	_, err := store.CreateUser(context.Background(), user, "hash")
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from users").
		WithArgs("u-404").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "role", "status", "created_at", "updated_at"}))

	_, err := store.GetUser(context.Background(), "u-404")
	if !errors.Is(err, rbac.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingRequestForUserAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from role_requests").
		WithArgs("u-1").
		WillReturnRows(requestRows())

	_, ok, err := store.PendingRequestForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("PendingRequestForUser: %v", err)
	}
	if ok {
		t.Fatal("expected no pending request")
	}
}
