package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"folio.dev/internal/auth"
	"folio.dev/internal/content"
	"folio.dev/internal/obs"
	"folio.dev/internal/rbac"
	"folio.dev/internal/search"
)

// overlaySearchRequest is the POST body: a query plus draft collections.
// Editors use it to preview search behavior over unsaved edits; overlay
// items shadow stored items with the same id.
type overlaySearchRequest struct {
	Query     string             `json:"query"`
	Type      string             `json:"type"`
	Category  string             `json:"category"`
	Projects  []content.Project  `json:"projects"`
	Articles  []content.Article  `json:"articles"`
	Gradients []content.Gradient `json:"gradients"`
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.searchStored(w, r)
	case http.MethodPost:
		a.searchWithOverlay(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) searchStored(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	typeFilter, err := parseTypeFilter(query.Get("type"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	_, authenticated := auth.UserFromContext(r.Context())
	cols, err := content.Snapshot(r.Context(), a.contents)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "search unavailable")
		return
	}

	obs.ObserveSearch(string(typeFilter))
	results := search.Search(query.Get("q"), search.Options{
		Type:          typeFilter,
		Category:      query.Get("category"),
		Authenticated: authenticated,
	}, cols)
	writeJSON(w, http.StatusOK, results)
}

func (a *API) searchWithOverlay(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.ensurePermission(w, r, rbac.PermEdit); !ok {
		return
	}
	var req overlaySearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	typeFilter, err := parseTypeFilter(req.Type)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cols, err := content.Snapshot(r.Context(), a.contents)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "search unavailable")
		return
	}

	obs.ObserveSearch(string(typeFilter))
	results := search.Search(req.Query, search.Options{
		Type:          typeFilter,
		Category:      req.Category,
		Authenticated: true,
		Overlay: content.Collections{
			Projects:  req.Projects,
			Articles:  req.Articles,
			Gradients: req.Gradients,
		},
	}, cols)
	writeJSON(w, http.StatusOK, results)
}

func parseTypeFilter(raw string) (search.TypeFilter, error) {
	switch search.TypeFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", search.TypeAll:
		return search.TypeAll, nil
	case search.TypeProjects:
		return search.TypeProjects, nil
	case search.TypeArticles:
		return search.TypeArticles, nil
	case search.TypeGradients:
		return search.TypeGradients, nil
	default:
		return "", errInvalidTypeFilter
	}
}

var errInvalidTypeFilter = errors.New("type must be one of all, projects, articles, gradients")
