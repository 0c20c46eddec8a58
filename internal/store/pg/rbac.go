package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"folio.dev/internal/auth"
	"folio.dev/internal/rbac"
)

var (
	_ rbac.Store     = (*Store)(nil)
	_ auth.UserStore = (*Store)(nil)
)

const userColumns = `id, email, name, coalesce(avatar_url, ''), role, status, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (rbac.User, error) {
	var u rbac.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, userID string) (rbac.User, error) {
	if s.db == nil {
		return rbac.User{}, errors.New("database connection unavailable")
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		select `+userColumns+`
		from users
		where id = $1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.User{}, rbac.ErrNotFound
	}
	if err != nil {
		return rbac.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]rbac.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+userColumns+`
		from users
		order by created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []rbac.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SetUserRole(ctx context.Context, userID string, role rbac.Role) (rbac.User, error) {
	if s.db == nil {
		return rbac.User{}, errors.New("database connection unavailable")
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		update users
		set role = $2, updated_at = now()
		where id = $1
		returning `+userColumns+`
	`, userID, role))
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.User{}, rbac.ErrNotFound
	}
	if err != nil {
		return rbac.User{}, err
	}
	return u, nil
}

// CreateUser persists a new account with its credential hash.
func (s *Store) CreateUser(ctx context.Context, user rbac.User, passwordHash string) (rbac.User, error) {
	if s.db == nil {
		return rbac.User{}, errors.New("database connection unavailable")
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		insert into users (id, email, name, avatar_url, role, status, password_hash)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning `+userColumns+`
	`, user.ID, user.Email, user.Name, nullIfEmpty(user.AvatarURL), user.Role, user.Status, passwordHash))
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return rbac.User{}, auth.ErrAlreadyExists
		}
		return rbac.User{}, err
	}
	return u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (rbac.User, string, error) {
	if s.db == nil {
		return rbac.User{}, "", errors.New("database connection unavailable")
	}
	var (
		u    rbac.User
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		select id, email, name, coalesce(avatar_url, ''), role, status, created_at, updated_at, password_hash
		from users
		where email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.User{}, "", auth.ErrNotFound
	}
	if err != nil {
		return rbac.User{}, "", err
	}
	return u, hash, nil
}

const requestColumns = `id, user_id, user_name, user_email, from_role, to_role, reason, status, coalesce(reviewed_by, ''), reviewed_at, created_at`

func scanRequest(row interface{ Scan(...any) error }) (rbac.RoleRequest, error) {
	var (
		req        rbac.RoleRequest
		reviewedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.UserID, &req.UserName, &req.UserEmail, &req.CurrentRole,
		&req.RequestedRole, &req.Reason, &req.Status, &req.ReviewedBy, &reviewedAt, &req.CreatedAt)
	if err != nil {
		return rbac.RoleRequest{}, err
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		req.ReviewedAt = &at
	}
	return req, nil
}

func (s *Store) CreateRequest(ctx context.Context, req rbac.RoleRequest) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	_, err := s.db.ExecContext(ctx, `
		insert into role_requests (id, user_id, user_name, user_email, from_role, to_role, reason, status, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, req.ID, req.UserID, req.UserName, req.UserEmail, req.CurrentRole, req.RequestedRole, req.Reason, req.Status, req.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return rbac.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (rbac.RoleRequest, error) {
	if s.db == nil {
		return rbac.RoleRequest{}, errors.New("database connection unavailable")
	}
	req, err := scanRequest(s.db.QueryRowContext(ctx, `
		select `+requestColumns+`
		from role_requests
		where id = $1
	`, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.RoleRequest{}, rbac.ErrRequestNotFound
	}
	if err != nil {
		return rbac.RoleRequest{}, err
	}
	return req, nil
}

func (s *Store) PendingRequestForUser(ctx context.Context, userID string) (rbac.RoleRequest, bool, error) {
	if s.db == nil {
		return rbac.RoleRequest{}, false, errors.New("database connection unavailable")
	}
	req, err := scanRequest(s.db.QueryRowContext(ctx, `
		select `+requestColumns+`
		from role_requests
		where user_id = $1 and status = 'pending'
		order by created_at
		limit 1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.RoleRequest{}, false, nil
	}
	if err != nil {
		return rbac.RoleRequest{}, false, err
	}
	return req, true, nil
}

func (s *Store) ListRequests(ctx context.Context, status rbac.RequestStatus) ([]rbac.RoleRequest, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+requestColumns+`
		from role_requests
		where $1 = '' or status = $1
		order by created_at, id
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []rbac.RoleRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// ResolveRequest settles a pending request and, on approval, promotes the
// user inside the same transaction. The row lock on the request serializes
// concurrent reviewers: exactly one wins, the rest see not-pending.
func (s *Store) ResolveRequest(ctx context.Context, requestID string, status rbac.RequestStatus, reviewerID string, reviewedAt time.Time, applyRole bool) (rbac.RoleRequest, error) {
	if s.db == nil {
		return rbac.RoleRequest{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rbac.RoleRequest{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		userID        string
		requestedRole rbac.Role
		current       rbac.RequestStatus
	)
	err = tx.QueryRowContext(ctx, `
		select user_id, to_role, status
		from role_requests
		where id = $1
		for update
	`, requestID).Scan(&userID, &requestedRole, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.RoleRequest{}, rbac.ErrRequestNotFound
	}
	if err != nil {
		return rbac.RoleRequest{}, err
	}
	if current != rbac.RequestPending {
		return rbac.RoleRequest{}, rbac.ErrRequestNotPending
	}

	if applyRole {
		res, err := tx.ExecContext(ctx, `
			update users
			set role = $2, updated_at = $3
			where id = $1
		`, userID, requestedRole, reviewedAt)
		if err != nil {
			return rbac.RoleRequest{}, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return rbac.RoleRequest{}, err
		}
		if aff == 0 {
			return rbac.RoleRequest{}, rbac.ErrNotFound
		}
	}

	req, err := scanRequest(tx.QueryRowContext(ctx, `
		update role_requests
		set status = $2, reviewed_by = nullif($3, ''), reviewed_at = $4
		where id = $1
		returning `+requestColumns+`
	`, requestID, status, reviewerID, reviewedAt))
	if err != nil {
		return rbac.RoleRequest{}, err
	}

	if err := tx.Commit(); err != nil {
		return rbac.RoleRequest{}, err
	}
	return req, nil
}
