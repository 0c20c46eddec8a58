package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"folio.dev/internal/content"
)

var _ content.Store = (*Store)(nil)

// jsonDoc round-trips string slices and block lists through jsonb columns.
func jsonDoc(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return data, nil
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode jsonb: %w", err)
	}
	return out, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]content.Project, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, title, description, category, tags, technologies, images, featured, visibility, created_at, updated_at
		from projects
		order by created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []content.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (content.Project, error) {
	if s.db == nil {
		return content.Project{}, errors.New("database connection unavailable")
	}
	p, err := scanProject(s.db.QueryRowContext(ctx, `
		select id, title, description, category, tags, technologies, images, featured, visibility, created_at, updated_at
		from projects
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Project{}, content.ErrNotFound
	}
	if err != nil {
		return content.Project{}, err
	}
	return p, nil
}

func (s *Store) PutProject(ctx context.Context, p content.Project) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	tags, err := jsonDoc(p.Tags)
	if err != nil {
		return err
	}
	techs, err := jsonDoc(p.Technologies)
	if err != nil {
		return err
	}
	images, err := jsonDoc(p.Images)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into projects (id, title, description, category, tags, technologies, images, featured, visibility, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		on conflict (id) do update set
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			technologies = excluded.technologies,
			images = excluded.images,
			featured = excluded.featured,
			visibility = excluded.visibility,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, p.Description, p.Category, tags, techs, images, p.Featured, p.Visibility, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "projects", id)
}

func scanProject(row interface{ Scan(...any) error }) (content.Project, error) {
	var (
		p                   content.Project
		tags, techs, images []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &tags, &techs, &images,
		&p.Featured, &p.Visibility, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return content.Project{}, err
	}
	var err error
	if p.Tags, err = decodeStrings(tags); err != nil {
		return content.Project{}, err
	}
	if p.Technologies, err = decodeStrings(techs); err != nil {
		return content.Project{}, err
	}
	if p.Images, err = decodeStrings(images); err != nil {
		return content.Project{}, err
	}
	return p, nil
}

func (s *Store) ListArticles(ctx context.Context) ([]content.Article, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, title, excerpt, category, tags, blocks, visibility, published_at, updated_at
		from articles
		order by published_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []content.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *Store) GetArticle(ctx context.Context, id string) (content.Article, error) {
	if s.db == nil {
		return content.Article{}, errors.New("database connection unavailable")
	}
	a, err := scanArticle(s.db.QueryRowContext(ctx, `
		select id, title, excerpt, category, tags, blocks, visibility, published_at, updated_at
		from articles
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Article{}, content.ErrNotFound
	}
	if err != nil {
		return content.Article{}, err
	}
	return a, nil
}

func (s *Store) PutArticle(ctx context.Context, a content.Article) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	tags, err := jsonDoc(a.Tags)
	if err != nil {
		return err
	}
	blocks, err := jsonDoc(a.Blocks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into articles (id, title, excerpt, category, tags, blocks, visibility, published_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict (id) do update set
			title = excluded.title,
			excerpt = excluded.excerpt,
			category = excluded.category,
			tags = excluded.tags,
			blocks = excluded.blocks,
			visibility = excluded.visibility,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
	`, a.ID, a.Title, a.Excerpt, a.Category, tags, blocks, a.Visibility, a.PublishedAt, a.UpdatedAt)
	return err
}

func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "articles", id)
}

func scanArticle(row interface{ Scan(...any) error }) (content.Article, error) {
	var (
		a            content.Article
		tags, blocks []byte
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Excerpt, &a.Category, &tags, &blocks,
		&a.Visibility, &a.PublishedAt, &a.UpdatedAt); err != nil {
		return content.Article{}, err
	}
	var err error
	if a.Tags, err = decodeStrings(tags); err != nil {
		return content.Article{}, err
	}
	if len(blocks) > 0 {
		if err := json.Unmarshal(blocks, &a.Blocks); err != nil {
			return content.Article{}, fmt.Errorf("decode blocks: %w", err)
		}
	}
	return a, nil
}

func (s *Store) ListGradients(ctx context.Context) ([]content.Gradient, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, description, category, tags, colors, angle, visibility, created_at, updated_at
		from gradients
		order by created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gradients []content.Gradient
	for rows.Next() {
		g, err := scanGradient(rows)
		if err != nil {
			return nil, err
		}
		gradients = append(gradients, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return gradients, nil
}

func (s *Store) GetGradient(ctx context.Context, id string) (content.Gradient, error) {
	if s.db == nil {
		return content.Gradient{}, errors.New("database connection unavailable")
	}
	g, err := scanGradient(s.db.QueryRowContext(ctx, `
		select id, name, description, category, tags, colors, angle, visibility, created_at, updated_at
		from gradients
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Gradient{}, content.ErrNotFound
	}
	if err != nil {
		return content.Gradient{}, err
	}
	return g, nil
}

func (s *Store) PutGradient(ctx context.Context, g content.Gradient) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	tags, err := jsonDoc(g.Tags)
	if err != nil {
		return err
	}
	colors, err := jsonDoc(g.Colors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into gradients (id, name, description, category, tags, colors, angle, visibility, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		on conflict (id) do update set
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			colors = excluded.colors,
			angle = excluded.angle,
			visibility = excluded.visibility,
			updated_at = excluded.updated_at
	`, g.ID, g.Name, g.Description, g.Category, tags, colors, g.Angle, g.Visibility, g.CreatedAt, g.UpdatedAt)
	return err
}

func (s *Store) DeleteGradient(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "gradients", id)
}

func scanGradient(row interface{ Scan(...any) error }) (content.Gradient, error) {
	var (
		g            content.Gradient
		tags, colors []byte
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &tags, &colors,
		&g.Angle, &g.Visibility, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return content.Gradient{}, err
	}
	var err error
	if g.Tags, err = decodeStrings(tags); err != nil {
		return content.Gradient{}, err
	}
	if g.Colors, err = decodeStrings(colors); err != nil {
		return content.Gradient{}, err
	}
	return g, nil
}

// deleteRow removes one row by id from a fixed table name.
func (s *Store) deleteRow(ctx context.Context, table, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from `+table+` where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return content.ErrNotFound
	}
	return nil
}
