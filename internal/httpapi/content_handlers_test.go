package httpapi

import (
	"net/http"
	"testing"

	"folio.dev/internal/content"
)

func TestContentListingHidesPrivateFromAnonymous(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/v1/projects", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	listing := decode[projectListResponse](t, resp)
	if listing.Total != 1 || listing.Items[0].ID != "p-pub" {
		t.Fatalf("anonymous listing should hold only the public project: %+v", listing)
	}

	auth := api.signIn("subscriber@folio.dev")
	resp = api.get("/v1/projects", nil, auth)
	listing = decode[projectListResponse](t, resp)
	if listing.Total != 2 {
		t.Fatalf("authenticated listing should include private items: %+v", listing)
	}

	// Direct fetch of a private item is 404 for anonymous callers.
	resp = api.get("/v1/projects/p-priv", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp = api.get("/v1/projects/p-priv", nil, auth)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for authenticated fetch, got %d", resp.StatusCode)
	}
}

func TestContentMutationPermissions(t *testing.T) {
	api := newTestAPI(t)
	subscriber := api.signIn("subscriber@folio.dev")
	editor := api.signIn("editor@folio.dev")
	admin := api.signIn("admin@folio.dev")

	body := map[string]any{
		"name":       "Ocean Drift",
		"colors":     []string{"#004e89", "#1a659e"},
		"angle":      90,
		"visibility": "public",
	}

	// Anonymous and subscriber writers are refused.
	resp := api.post("/v1/gradients", body, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp = api.post("/v1/gradients", body, subscriber)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Editors hold canManageContent.
	resp = api.post("/v1/gradients", body, editor)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected create status: %d", resp.StatusCode)
	}
	created := decode[content.Gradient](t, resp)
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if resp.Header.Get("Location") == "" {
		t.Fatalf("expected Location header")
	}

	// Deletion needs canDeleteContent, which editors lack.
	resp = api.do(http.MethodDelete, "/v1/gradients/"+created.ID, nil, editor)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for editor delete, got %d", resp.StatusCode)
	}
	resp = api.do(http.MethodDelete, "/v1/gradients/"+created.ID, nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected delete status: %d", resp.StatusCode)
	}
	resp = api.do(http.MethodDelete, "/v1/gradients/"+created.ID, nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", resp.StatusCode)
	}
}

func TestContentValidation(t *testing.T) {
	api := newTestAPI(t)
	editor := api.signIn("editor@folio.dev")

	resp := api.post("/v1/gradients", map[string]any{
		"name":   "Single Stop",
		"colors": []string{"#ffffff"},
	}, editor)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for one-color gradient, got %d", resp.StatusCode)
	}

	resp = api.post("/v1/projects", map[string]any{
		"title":      "Bad Visibility",
		"visibility": "secret",
	}, editor)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown visibility, got %d", resp.StatusCode)
	}
}

func TestArticleUpdateKeepsPublishedAt(t *testing.T) {
	api := newTestAPI(t)
	editor := api.signIn("editor@folio.dev")

	resp := api.post("/v1/articles", map[string]any{
		"title":    "Gradient Theory",
		"excerpt":  "Ramps, stops, and easing.",
		"category": "design",
		"blocks": []map[string]any{
			{"type": "heading", "level": 2, "text": "Stops"},
			{"type": "text", "text": "Two stops make a ramp."},
		},
	}, editor)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected create status: %d", resp.StatusCode)
	}
	created := decode[content.Article](t, resp)
	if created.PublishedAt.IsZero() {
		t.Fatalf("expected published_at to default on create")
	}
	if len(created.Blocks) != 2 {
		t.Fatalf("expected blocks to survive decode: %+v", created.Blocks)
	}

	resp = api.do(http.MethodPut, "/v1/articles/"+created.ID, map[string]any{
		"title":   "Gradient Theory, Revised",
		"excerpt": "Now with easing curves.",
	}, editor)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected update status: %d", resp.StatusCode)
	}
	updated := decode[content.Article](t, resp)
	if !updated.PublishedAt.Equal(created.PublishedAt) {
		t.Fatalf("published_at must survive updates: %v vs %v", updated.PublishedAt, created.PublishedAt)
	}
	if updated.Title != "Gradient Theory, Revised" {
		t.Fatalf("unexpected title: %s", updated.Title)
	}

	// An unknown block type is rejected at decode time.
	resp = api.post("/v1/articles", map[string]any{
		"title":  "Broken",
		"blocks": []map[string]any{{"type": "hologram"}},
	}, editor)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown block type, got %d", resp.StatusCode)
	}
}
