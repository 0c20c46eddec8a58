package content

import "context"

// Collections is a point-in-time snapshot of the three searchable
// content sequences, each a flat ordered list with stable string ids.
type Collections struct {
	Projects  []Project
	Articles  []Article
	Gradients []Gradient
}

// Store is the explicit content store: all reads and mutations go through
// it rather than shared package-level state, so it can be swapped for an
// in-memory double in tests.
type Store interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	PutProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, id string) error

	ListArticles(ctx context.Context) ([]Article, error)
	GetArticle(ctx context.Context, id string) (Article, error)
	PutArticle(ctx context.Context, a Article) error
	DeleteArticle(ctx context.Context, id string) error

	ListGradients(ctx context.Context) ([]Gradient, error)
	GetGradient(ctx context.Context, id string) (Gradient, error)
	PutGradient(ctx context.Context, g Gradient) error
	DeleteGradient(ctx context.Context, id string) error
}

// Snapshot assembles the full Collections view from a store.
func Snapshot(ctx context.Context, store Store) (Collections, error) {
	projects, err := store.ListProjects(ctx)
	if err != nil {
		return Collections{}, err
	}
	articles, err := store.ListArticles(ctx)
	if err != nil {
		return Collections{}, err
	}
	gradients, err := store.ListGradients(ctx)
	if err != nil {
		return Collections{}, err
	}
	return Collections{Projects: projects, Articles: articles, Gradients: gradients}, nil
}
