package search

import (
	"sort"
	"strings"

	"folio.dev/internal/content"
)

// TypeFilter restricts which content types are scanned. Excluded types are
// skipped entirely, not filtered after scoring.
type TypeFilter string

const (
	TypeAll       TypeFilter = "all"
	TypeProjects  TypeFilter = "projects"
	TypeArticles  TypeFilter = "articles"
	TypeGradients TypeFilter = "gradients"
)

// Options parameterise one search invocation.
type Options struct {
	Type     TypeFilter
	Category string
	// Authenticated callers may see private content.
	Authenticated bool
	// Overlay holds caller-supplied edited items; an overlay item replaces
	// the base item with the same id (last writer wins), keeping the base
	// item's position.
	Overlay content.Collections
}

// Result is a projection of a matched item: enough to render a result row
// without re-fetching the source.
type Result struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt,omitempty"`
	Category string `json:"category,omitempty"`
	Score    int    `json:"score"`
}

// Results groups ranked matches per content type.
type Results struct {
	Projects  []Result `json:"projects"`
	Articles  []Result `json:"articles"`
	Gradients []Result `json:"gradients"`
	Total     int      `json:"total"`
}

// Search scores and ranks the collections against query. It never mutates
// its inputs, never fails on malformed items, and returns the empty result
// shape for blank queries.
func Search(query string, opts Options, cols content.Collections) Results {
	results := Results{Projects: []Result{}, Articles: []Result{}, Gradients: []Result{}}
	if strings.TrimSpace(query) == "" {
		return results
	}
	if opts.Type == "" {
		opts.Type = TypeAll
	}

	if opts.Type == TypeAll || opts.Type == TypeProjects {
		results.Projects = scanProjects(query, opts, cols.Projects)
	}
	if opts.Type == TypeAll || opts.Type == TypeArticles {
		results.Articles = scanArticles(query, opts, cols.Articles)
	}
	if opts.Type == TypeAll || opts.Type == TypeGradients {
		results.Gradients = scanGradients(query, opts, cols.Gradients)
	}
	results.Total = len(results.Projects) + len(results.Articles) + len(results.Gradients)
	return results
}

func scanProjects(query string, opts Options, base []content.Project) []Result {
	merged := mergeByID(base, opts.Overlay.Projects, func(p content.Project) string { return p.ID })
	var out []Result
	for _, p := range merged {
		if !visible(p.Visibility, opts.Authenticated) {
			continue
		}
		if !categoryMatches(opts.Category, p.Category) {
			continue
		}
		blob := joinText(p.Title, p.Description, p.Category, strings.Join(p.Tags, " "), strings.Join(p.Technologies, " "))
		score := Score(query, blob)
		if score == 0 {
			continue
		}
		out = append(out, Result{
			ID:       p.ID,
			Type:     string(TypeProjects),
			Title:    p.Title,
			Excerpt:  p.Description,
			Category: p.Category,
			Score:    score,
		})
	}
	return rank(out)
}

func scanArticles(query string, opts Options, base []content.Article) []Result {
	merged := mergeByID(base, opts.Overlay.Articles, func(a content.Article) string { return a.ID })
	var out []Result
	for _, a := range merged {
		if !visible(a.Visibility, opts.Authenticated) {
			continue
		}
		if !categoryMatches(opts.Category, a.Category) {
			continue
		}
		blob := joinText(a.Title, a.Excerpt, a.Category, strings.Join(a.Tags, " "), a.Blocks.RenderText())
		score := Score(query, blob)
		if score == 0 {
			continue
		}
		out = append(out, Result{
			ID:       a.ID,
			Type:     string(TypeArticles),
			Title:    a.Title,
			Excerpt:  a.Excerpt,
			Category: a.Category,
			Score:    score,
		})
	}
	return rank(out)
}

func scanGradients(query string, opts Options, base []content.Gradient) []Result {
	merged := mergeByID(base, opts.Overlay.Gradients, func(g content.Gradient) string { return g.ID })
	var out []Result
	for _, g := range merged {
		if !visible(g.Visibility, opts.Authenticated) {
			continue
		}
		if !categoryMatches(opts.Category, g.Category) {
			continue
		}
		blob := joinText(g.Name, g.Description, g.Category, strings.Join(g.Tags, " "), strings.Join(g.Colors, " "))
		score := Score(query, blob)
		if score == 0 {
			continue
		}
		out = append(out, Result{
			ID:       g.ID,
			Type:     string(TypeGradients),
			Title:    g.Name,
			Excerpt:  g.Description,
			Category: g.Category,
			Score:    score,
		})
	}
	return rank(out)
}

// mergeByID applies the overlay over the base sequence: same-id items are
// replaced in place, new overlay items are appended in overlay order.
func mergeByID[T any](base, overlay []T, id func(T) string) []T {
	if len(overlay) == 0 {
		return base
	}
	replacements := make(map[string]T, len(overlay))
	for _, item := range overlay {
		replacements[id(item)] = item
	}
	out := make([]T, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(base))
	for _, item := range base {
		key := id(item)
		seen[key] = true
		if repl, ok := replacements[key]; ok {
			out = append(out, repl)
			continue
		}
		out = append(out, item)
	}
	for _, item := range overlay {
		if !seen[id(item)] {
			out = append(out, item)
		}
	}
	return out
}

// visible applies the visibility filter before scoring, never after.
func visible(v content.Visibility, authenticated bool) bool {
	if v == content.VisibilityPrivate {
		return authenticated
	}
	return true
}

func categoryMatches(filter, category string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(filter), strings.TrimSpace(category))
}

func joinText(parts ...string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// rank sorts descending by score; ties keep input order so repeated
// queries over the same collections are deterministic.
func rank(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
