package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"folio.dev/internal/auth"
	"folio.dev/internal/obs"
)

// Event names recorded across the service. Role-request lifecycle and
// content mutations are the security-relevant surface.
const (
	EventRequestCreate  = "rbac.request.create"
	EventRequestApprove = "rbac.request.approve"
	EventRequestReject  = "rbac.request.reject"
	EventRequestCancel  = "rbac.request.cancel"
	EventRoleUpdate     = "rbac.user.role_update"
	EventSignIn         = "auth.signin"
	EventSignUp         = "auth.signup"
	EventSignOut        = "auth.signout"
	EventContentCreate  = "content.create"
	EventContentUpdate  = "content.update"
	EventContentDelete  = "content.delete"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestIDFromContext extracts the audit request id from context if present.
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if user, ok := auth.UserFromContext(ctx); ok {
		entry["user_id"] = user.ID
		entry["user_role"] = string(user.Role)
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
