package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio.dev/internal/auth"
	"folio.dev/internal/config"
	"folio.dev/internal/content"
	"folio.dev/internal/httpapi"
	"folio.dev/internal/obs"
	"folio.dev/internal/rbac"
	"folio.dev/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		rbacStore rbac.Store
		provider  auth.Provider
		contents  content.Store
		probe     httpapi.ReadyProbe
		pgStore   *pg.Store
	)

	if cfg.AuthMode == config.ModeStore {
		pgStore, err = pg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		rbacStore = pgStore
		provider = auth.NewStoreProvider(pgStore, cfg.TokenTTL)
		contents = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		mem := rbac.NewInMemory()
		rbacStore = mem
		provider = auth.NewMockProvider(cfg.TokenTTL, mem)
		contents = seedDemoContent(content.NewInMemory())
	}

	rbacSvc, err := rbac.NewService(rbacStore)
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}

	api := httpapi.New(probe, version, rbacSvc, provider, contents)
	api.SetRateLimits(cfg.RateBurst, cfg.RatePerSecond)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting folio-api %s on %s (auth mode %s)", version, srv.Addr, cfg.AuthMode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

// seedDemoContent fills the in-memory catalog used by mock mode so the
// search and content endpoints have something to serve out of the box.
func seedDemoContent(store *content.InMemory) *content.InMemory {
	ctx := context.Background()
	now := time.Now().UTC()

	_ = store.PutProject(ctx, content.Project{
		ID:           "demo-project-design-system",
		Title:        "Design System Revamp",
		Description:  "Rebuilding the component library with tokens and dark mode.",
		Category:     "design",
		Tags:         []string{"design", "ui"},
		Technologies: []string{"figma", "react"},
		Featured:     true,
		Visibility:   content.VisibilityPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	_ = store.PutProject(ctx, content.Project{
		ID:          "demo-project-intranet",
		Title:       "Client Intranet",
		Description: "Internal portal for a consulting client.",
		Category:    "web",
		Tags:        []string{"internal"},
		Visibility:  content.VisibilityPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	_ = store.PutArticle(ctx, content.Article{
		ID:       "demo-article-gradients",
		Title:    "Designing with Gradients",
		Excerpt:  "Picking stops and angles that survive compression.",
		Category: "design",
		Tags:     []string{"color"},
		Blocks: content.BlockList{
			content.HeadingBlock{Level: 2, Text: "Why gradients band"},
			content.TextBlock{Text: "Smooth ramps need enough stops to avoid visible banding."},
		},
		Visibility:  content.VisibilityPublic,
		PublishedAt: now,
		UpdatedAt:   now,
	})
	_ = store.PutGradient(ctx, content.Gradient{
		ID:          "demo-gradient-sunset",
		Name:        "Sunset Fade",
		Description: "Warm dusk ramp.",
		Category:    "warm",
		Tags:        []string{"sunset"},
		Colors:      []string{"#ff6b35", "#f7c59f", "#2e4057"},
		Angle:       135,
		Visibility:  content.VisibilityPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return store
}
