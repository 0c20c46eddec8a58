package httpapi

import (
	"net/http"
	"strings"

	"folio.dev/internal/audit"
	"folio.dev/internal/rbac"
)

type createRoleRequestRequest struct {
	RequestedRole string `json:"requested_role"`
	Reason        string `json:"reason"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type roleRequestListResponse struct {
	Items []rbac.RoleRequest `json:"items"`
	Total int                `json:"total"`
}

func (a *API) handleRoleRequestsCollection(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "role service unavailable")
		return
	}
	switch r.Method {
	case http.MethodPost:
		a.createRoleRequest(w, r)
	case http.MethodGet:
		a.listRoleRequests(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createRoleRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createRoleRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	requested, err := rbac.ParseRole(req.RequestedRole)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.rbac.RequestUpgrade(r.Context(), user, requested, req.Reason)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), audit.EventRequestCreate, map[string]any{
		"request_id":     created.ID,
		"requested_role": string(created.RequestedRole),
	})
	w.Header().Set("Location", "/v1/role-requests/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) listRoleRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	status := rbac.RequestStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	items, err := a.rbac.ListRequests(r.Context(), user, status)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	if items == nil {
		items = []rbac.RoleRequest{}
	}
	writeJSON(w, http.StatusOK, roleRequestListResponse{Items: items, Total: len(items)})
}

func (a *API) handleRoleRequestResource(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "role service unavailable")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/role-requests/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) == 1 && parts[0] == "upgrades" {
		a.listUpgrades(w, r)
		return
	}
	if len(parts) != 2 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	requestID := parts[0]

	var (
		resolved rbac.RoleRequest
		err      error
		event    string
	)
	switch parts[1] {
	case "approve":
		resolved, err = a.rbac.ApproveRequest(r.Context(), user, requestID)
		event = audit.EventRequestApprove
	case "reject":
		resolved, err = a.rbac.RejectRequest(r.Context(), user, requestID)
		event = audit.EventRequestReject
	case "cancel":
		resolved, err = a.rbac.CancelRequest(r.Context(), user, requestID)
		event = audit.EventRequestCancel
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"request_id":     resolved.ID,
		"target_user_id": resolved.UserID,
		"status":         string(resolved.Status),
	})
	writeJSON(w, http.StatusOK, resolved)
}

// listUpgrades reports the self-service upgrade targets for the caller.
func (a *API) listUpgrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current_role": user.Role,
		"upgrades":     a.rbac.Upgrades(user),
	})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "role service unavailable")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "role" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.rbac.UpdateUserRole(r.Context(), actor, parts[0], role)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), audit.EventRoleUpdate, map[string]any{
		"target_user_id": updated.ID,
		"role":           string(updated.Role),
	})
	writeJSON(w, http.StatusOK, updated)
}
