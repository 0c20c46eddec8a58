package content

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestBlockListRoundTrip(t *testing.T) {
	article := Article{
		ID:    "a1",
		Title: "Design Tokens in Practice",
		Blocks: BlockList{
			HeadingBlock{Level: 2, Text: "Why tokens"},
			TextBlock{Text: "Tokens decouple design decisions from components."},
			QuoteBlock{Text: "Name things by intent.", Attribution: "Studio handbook"},
			CodeBlock{Language: "css", Code: ":root { --accent: #ff6b35; }"},
			ImageBlock{URL: "/img/tokens.png", Alt: "token diagram", Caption: "Token layers"},
			VideoBlock{URL: "/vid/demo.mp4", Caption: "Live theming demo"},
			GalleryBlock{Images: []string{"/img/a.png", "/img/b.png"}, Captions: []string{"before", "after"}},
			DividerBlock{},
		},
	}

	data, err := json.Marshal(article)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Article
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Blocks) != len(article.Blocks) {
		t.Fatalf("expected %d blocks, got %d", len(article.Blocks), len(decoded.Blocks))
	}
	for i, b := range decoded.Blocks {
		if b.BlockType() != article.Blocks[i].BlockType() {
			t.Errorf("block %d: type %s, want %s", i, b.BlockType(), article.Blocks[i].BlockType())
		}
	}
	heading, ok := decoded.Blocks[0].(HeadingBlock)
	if !ok {
		t.Fatalf("block 0 decoded as %T", decoded.Blocks[0])
	}
	if heading.Level != 2 || heading.Text != "Why tokens" {
		t.Fatalf("heading payload lost: %+v", heading)
	}
}

func TestBlockListUnknownType(t *testing.T) {
	raw := `[{"type":"hologram","text":"nope"}]`
	var list BlockList
	err := json.Unmarshal([]byte(raw), &list)
	if err == nil {
		t.Fatal("expected error for unknown block type")
	}
	if !strings.Contains(err.Error(), "hologram") {
		t.Fatalf("error should name the offending type: %v", err)
	}
}

func TestRenderTextSkipsNonTextualBlocks(t *testing.T) {
	list := BlockList{
		TextBlock{Text: "alpha"},
		DividerBlock{},
		ImageBlock{URL: "/x.png"},
		QuoteBlock{Text: "beta"},
	}
	if got := list.RenderText(); got != "alpha beta" {
		t.Fatalf("RenderText() = %q", got)
	}
}

func TestInMemoryStoreOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	for _, id := range []string{"p1", "p2", "p3"} {
		if err := store.PutProject(ctx, Project{ID: id, Title: id, Visibility: VisibilityPublic}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	// Replacement keeps the original position.
	if err := store.PutProject(ctx, Project{ID: "p2", Title: "p2-edited", Visibility: VisibilityPublic}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	projects, _ := store.ListProjects(ctx)
	if len(projects) != 3 || projects[1].Title != "p2-edited" {
		t.Fatalf("unexpected projects: %+v", projects)
	}

	if err := store.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteProject(ctx, "p1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	projects, _ = store.ListProjects(ctx)
	if len(projects) != 2 || projects[0].ID != "p2" {
		t.Fatalf("unexpected order after delete: %+v", projects)
	}
}
