package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"folio.dev/internal/content"
)

func TestPutAndGetArticleRoundTripsBlocks(t *testing.T) {
	store, mock := newMockStore(t)
	published := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	article := content.Article{
		ID:       "a-1",
		Title:    "Designing With Gradients",
		Excerpt:  "Color ramps that do not look like 2012.",
		Category: "design",
		Tags:     []string{"color", "css"},
		Blocks: content.BlockList{
			content.HeadingBlock{Level: 2, Text: "Why gradients"},
			content.TextBlock{Text: "Flat fills read as unfinished."},
		},
		Visibility:  content.VisibilityPublic,
		PublishedAt: published,
		UpdatedAt:   published,
	}

	mock.ExpectExec("insert into articles").
		WithArgs(article.ID, article.Title, article.Excerpt, article.Category,
			sqlmock.AnyArg(), sqlmock.AnyArg(), article.Visibility, published, published).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.PutArticle(context.Background(), article); err != nil {
		t.Fatalf("PutArticle: %v", err)
	}

	blocksJSON := []byte(`[{"type":"heading","level":2,"text":"Why gradients"},{"type":"text","text":"Flat fills read as unfinished."}]`)
	mock.ExpectQuery("select .* from articles").
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "excerpt", "category", "tags", "blocks", "visibility", "published_at", "updated_at",
		}).AddRow("a-1", article.Title, article.Excerpt, article.Category,
			[]byte(`["color","css"]`), blocksJSON, "public", published, published))

	got, err := store.GetArticle(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got.Blocks))
	}
	heading, ok := got.Blocks[0].(content.HeadingBlock)
	if !ok || heading.Level != 2 {
		t.Fatalf("unexpected first block: %#v", got.Blocks[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetGradientNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from gradients").
		WithArgs("g-404").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "category", "tags", "colors", "angle", "visibility", "created_at", "updated_at",
		}))

	_, err := store.GetGradient(context.Background(), "g-404")
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProjectMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from projects").
		WithArgs("p-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteProject(context.Background(), "p-404"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProjectsDecodesJSONColumns(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("select .* from projects").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "category", "tags", "technologies", "images", "featured", "visibility", "created_at", "updated_at",
		}).AddRow("p-1", "Folio Redesign", "Case study", "web",
			[]byte(`["portfolio"]`), []byte(`["go","svelte"]`), []byte(`[]`), true, "public", created, created))

	projects, err := store.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	p := projects[0]
	if len(p.Technologies) != 2 || p.Technologies[0] != "go" {
		t.Fatalf("technologies not decoded: %v", p.Technologies)
	}
	if !p.Featured || p.Visibility != content.VisibilityPublic {
		t.Fatalf("unexpected project flags: %+v", p)
	}
}
