package content

import (
	"context"
	"sync"
)

// InMemory implements Store with insertion-ordered collections. Suitable
// for tests and demo mode; production uses the Postgres store.
type InMemory struct {
	mu sync.RWMutex

	projects  map[string]Project
	articles  map[string]Article
	gradients map[string]Gradient

	projectOrder  []string
	articleOrder  []string
	gradientOrder []string
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		projects:  make(map[string]Project),
		articles:  make(map[string]Article),
		gradients: make(map[string]Gradient),
	}
}

func (s *InMemory) ListProjects(ctx context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		out = append(out, s.projects[id])
	}
	return out, nil
}

func (s *InMemory) GetProject(ctx context.Context, id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemory) PutProject(ctx context.Context, p Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[p.ID]; !exists {
		s.projectOrder = append(s.projectOrder, p.ID)
	}
	s.projects[p.ID] = p
	return nil
}

func (s *InMemory) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	s.projectOrder = removeID(s.projectOrder, id)
	return nil
}

func (s *InMemory) ListArticles(ctx context.Context) ([]Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Article, 0, len(s.articleOrder))
	for _, id := range s.articleOrder {
		out = append(out, s.articles[id])
	}
	return out, nil
}

func (s *InMemory) GetArticle(ctx context.Context, id string) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrNotFound
	}
	return a, nil
}

func (s *InMemory) PutArticle(ctx context.Context, a Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.articles[a.ID]; !exists {
		s.articleOrder = append(s.articleOrder, a.ID)
	}
	s.articles[a.ID] = a
	return nil
}

func (s *InMemory) DeleteArticle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return ErrNotFound
	}
	delete(s.articles, id)
	s.articleOrder = removeID(s.articleOrder, id)
	return nil
}

func (s *InMemory) ListGradients(ctx context.Context) ([]Gradient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Gradient, 0, len(s.gradientOrder))
	for _, id := range s.gradientOrder {
		out = append(out, s.gradients[id])
	}
	return out, nil
}

func (s *InMemory) GetGradient(ctx context.Context, id string) (Gradient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gradients[id]
	if !ok {
		return Gradient{}, ErrNotFound
	}
	return g, nil
}

func (s *InMemory) PutGradient(ctx context.Context, g Gradient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.gradients[g.ID]; !exists {
		s.gradientOrder = append(s.gradientOrder, g.ID)
	}
	s.gradients[g.ID] = g
	return nil
}

func (s *InMemory) DeleteGradient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gradients[id]; !ok {
		return ErrNotFound
	}
	delete(s.gradients, id)
	s.gradientOrder = removeID(s.gradientOrder, id)
	return nil
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
