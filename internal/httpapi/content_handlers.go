package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"folio.dev/internal/audit"
	"folio.dev/internal/auth"
	"folio.dev/internal/content"
	"folio.dev/internal/ids"
	"folio.dev/internal/rbac"
)

type projectListResponse struct {
	Items []content.Project `json:"items"`
	Total int               `json:"total"`
}

type articleListResponse struct {
	Items []content.Article `json:"items"`
	Total int               `json:"total"`
}

type gradientListResponse struct {
	Items []content.Gradient `json:"items"`
	Total int                `json:"total"`
}

// --- projects ---

func (a *API) handleProjectsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := a.contents.ListProjects(r.Context())
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		_, authenticated := auth.UserFromContext(r.Context())
		visible := make([]content.Project, 0, len(items))
		for _, p := range items {
			if p.Visibility == content.VisibilityPublic || authenticated {
				visible = append(visible, p)
			}
		}
		writeJSON(w, http.StatusOK, projectListResponse{Items: visible, Total: len(visible)})
	case http.MethodPost:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var p content.Project
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := validateProject(&p, true); err != nil {
			handleContentError(w, r, err)
			return
		}
		if err := a.contents.PutProject(r.Context(), p); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentCreate, "project", p.ID)
		w.Header().Set("Location", "/v1/projects/"+p.ID)
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/v1/projects/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.contents.GetProject(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		if _, authenticated := auth.UserFromContext(r.Context()); p.Visibility == content.VisibilityPrivate && !authenticated {
			writeError(w, r, http.StatusNotFound, content.ErrNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var p content.Project
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p.ID = id
		if err := validateProject(&p, false); err != nil {
			handleContentError(w, r, err)
			return
		}
		existing, err := a.contents.GetProject(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = time.Now().UTC()
		if err := a.contents.PutProject(r.Context(), p); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentUpdate, "project", p.ID)
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if _, ok := a.ensurePermission(w, r, rbac.PermDeleteContent); !ok {
			return
		}
		if err := a.contents.DeleteProject(r.Context(), id); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentDelete, "project", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- articles ---

func (a *API) handleArticlesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := a.contents.ListArticles(r.Context())
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		_, authenticated := auth.UserFromContext(r.Context())
		visible := make([]content.Article, 0, len(items))
		for _, art := range items {
			if art.Visibility == content.VisibilityPublic || authenticated {
				visible = append(visible, art)
			}
		}
		writeJSON(w, http.StatusOK, articleListResponse{Items: visible, Total: len(visible)})
	case http.MethodPost:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var art content.Article
		if err := decodeJSON(w, r, &art); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := validateArticle(&art, true); err != nil {
			handleContentError(w, r, err)
			return
		}
		if err := a.contents.PutArticle(r.Context(), art); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentCreate, "article", art.ID)
		w.Header().Set("Location", "/v1/articles/"+art.ID)
		writeJSON(w, http.StatusCreated, art)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleArticleResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/v1/articles/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		art, err := a.contents.GetArticle(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		if _, authenticated := auth.UserFromContext(r.Context()); art.Visibility == content.VisibilityPrivate && !authenticated {
			writeError(w, r, http.StatusNotFound, content.ErrNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, art)
	case http.MethodPut:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var art content.Article
		if err := decodeJSON(w, r, &art); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		art.ID = id
		if err := validateArticle(&art, false); err != nil {
			handleContentError(w, r, err)
			return
		}
		existing, err := a.contents.GetArticle(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		if art.PublishedAt.IsZero() {
			art.PublishedAt = existing.PublishedAt
		}
		art.UpdatedAt = time.Now().UTC()
		if err := a.contents.PutArticle(r.Context(), art); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentUpdate, "article", art.ID)
		writeJSON(w, http.StatusOK, art)
	case http.MethodDelete:
		if _, ok := a.ensurePermission(w, r, rbac.PermDeleteContent); !ok {
			return
		}
		if err := a.contents.DeleteArticle(r.Context(), id); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentDelete, "article", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- gradients ---

func (a *API) handleGradientsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := a.contents.ListGradients(r.Context())
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		_, authenticated := auth.UserFromContext(r.Context())
		visible := make([]content.Gradient, 0, len(items))
		for _, g := range items {
			if g.Visibility == content.VisibilityPublic || authenticated {
				visible = append(visible, g)
			}
		}
		writeJSON(w, http.StatusOK, gradientListResponse{Items: visible, Total: len(visible)})
	case http.MethodPost:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var g content.Gradient
		if err := decodeJSON(w, r, &g); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := validateGradient(&g, true); err != nil {
			handleContentError(w, r, err)
			return
		}
		if err := a.contents.PutGradient(r.Context(), g); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentCreate, "gradient", g.ID)
		w.Header().Set("Location", "/v1/gradients/"+g.ID)
		writeJSON(w, http.StatusCreated, g)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGradientResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/v1/gradients/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		g, err := a.contents.GetGradient(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		if _, authenticated := auth.UserFromContext(r.Context()); g.Visibility == content.VisibilityPrivate && !authenticated {
			writeError(w, r, http.StatusNotFound, content.ErrNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, g)
	case http.MethodPut:
		if _, ok := a.ensurePermission(w, r, rbac.PermManageContent); !ok {
			return
		}
		var g content.Gradient
		if err := decodeJSON(w, r, &g); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		g.ID = id
		if err := validateGradient(&g, false); err != nil {
			handleContentError(w, r, err)
			return
		}
		existing, err := a.contents.GetGradient(r.Context(), id)
		if err != nil {
			handleContentError(w, r, err)
			return
		}
		g.CreatedAt = existing.CreatedAt
		g.UpdatedAt = time.Now().UTC()
		if err := a.contents.PutGradient(r.Context(), g); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentUpdate, "gradient", g.ID)
		writeJSON(w, http.StatusOK, g)
	case http.MethodDelete:
		if _, ok := a.ensurePermission(w, r, rbac.PermDeleteContent); !ok {
			return
		}
		if err := a.contents.DeleteGradient(r.Context(), id); err != nil {
			handleContentError(w, r, err)
			return
		}
		a.auditContent(r, audit.EventContentDelete, "gradient", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- shared ---

func resourceID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return "", false
	}
	return id, true
}

func (a *API) auditContent(r *http.Request, event, kind, id string) {
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"kind": kind,
		"id":   id,
	})
}

var errInvalidVisibility = fmt.Errorf("%w: visibility must be public or private", content.ErrInvalidInput)

func errFieldRequired(field string) error {
	return fmt.Errorf("%w: %s is required", content.ErrInvalidInput, field)
}

func validateProject(p *content.Project, create bool) error {
	if strings.TrimSpace(p.Title) == "" {
		return errFieldRequired("title")
	}
	return normalizeItem(&p.ID, &p.Visibility, &p.CreatedAt, &p.UpdatedAt, create)
}

func validateArticle(a *content.Article, create bool) error {
	if strings.TrimSpace(a.Title) == "" {
		return errFieldRequired("title")
	}
	var createdAt time.Time
	if err := normalizeItem(&a.ID, &a.Visibility, &createdAt, &a.UpdatedAt, create); err != nil {
		return err
	}
	if create && a.PublishedAt.IsZero() {
		a.PublishedAt = a.UpdatedAt
	}
	return nil
}

func validateGradient(g *content.Gradient, create bool) error {
	if strings.TrimSpace(g.Name) == "" {
		return errFieldRequired("name")
	}
	if len(g.Colors) < 2 {
		return errFieldRequired("at least two colors")
	}
	return normalizeItem(&g.ID, &g.Visibility, &g.CreatedAt, &g.UpdatedAt, create)
}

// normalizeItem fills ids, default visibility, and timestamps on create,
// and validates visibility on both paths.
func normalizeItem(id *string, vis *content.Visibility, createdAt, updatedAt *time.Time, create bool) error {
	if *vis == "" {
		*vis = content.VisibilityPublic
	}
	if !vis.Valid() {
		return errInvalidVisibility
	}
	if create {
		if *id == "" {
			*id = ids.New()
		}
		now := time.Now().UTC()
		*createdAt = now
		*updatedAt = now
	}
	return nil
}
