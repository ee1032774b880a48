package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/credentials"
	"cv-improver/internal/export"
	"cv-improver/internal/i18n"
	"cv-improver/internal/improver"
	"cv-improver/internal/llm"
	"cv-improver/internal/llm/gemini"
	"cv-improver/internal/services/health"
	"cv-improver/internal/shared/config"
	"cv-improver/internal/shared/server"
	"cv-improver/internal/shared/storage/db"
	"cv-improver/internal/shared/telemetry"
	"cv-improver/internal/web"
)

const (
	janitorInterval = 10 * time.Minute
	sessionMaxIdle  = 24 * time.Hour

	// healthProbeOwner is looked up by the health check; it never has a key.
	healthProbeOwner = "health-probe"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	Catalog  *i18n.Catalog
	Store    credentials.Store
	Provider llm.Provider
	Renderer export.Renderer
	Registry *improver.Registry

	closer io.Closer
}

// Overrides replaces collaborators, mostly for tests. Nil fields are built
// from configuration.
type Overrides struct {
	Store    credentials.Store
	Provider llm.Provider
	Renderer export.Renderer
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	catalog, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	app := &App{Config: cfg, Catalog: catalog, closer: nopCloser{}}

	if app.Store = ov.Store; app.Store == nil {
		if err := buildStore(ctx, app); err != nil {
			return nil, err
		}
	}

	if app.Provider = ov.Provider; app.Provider == nil {
		app.Provider, err = gemini.NewProvider(cfg.GeminiTransport, gemini.Options{
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	if app.Renderer = ov.Renderer; app.Renderer == nil {
		renderer, err := export.NewPDFRenderer(export.DefaultLayout(), cfg.ExportFontPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("pdf renderer: %w", err)
		}
		app.Renderer = renderer
	}

	app.Registry = improver.NewRegistry(improver.Deps{
		Catalog:  catalog,
		Store:    app.Store,
		Provider: app.Provider,
	})

	handler := web.NewHandler(app.Registry, catalog, app.Renderer, improver.DefaultSettleHold)
	handler.Health = health.NewService(map[string]health.Check{
		"credentials": storeCheck(app.Store),
	})
	app.Router, err = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Handler: handler,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"store":     cfg.CredentialStore,
		"transport": cfg.GeminiTransport,
		"model":     cfg.GeminiModel,
	})
	return app, nil
}

// Run starts background work until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Registry.RunJanitor(ctx, janitorInterval, sessionMaxIdle)
}

// Close releases the credential store connection.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func buildStore(ctx context.Context, app *App) error {
	cfg := app.Config
	store, closer, err := credentials.Open(ctx, cfg, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if !cfg.IsDevLike() {
			return fmt.Errorf("credential store: %w", err)
		}
		telemetry.Warn("bootstrap.store_fallback", map[string]any{
			"store": cfg.CredentialStore,
			"error": err,
		})
		store, closer = credentials.NewMemoryStore(), nopCloser{}
	}
	app.Store, app.closer = store, closer
	return nil
}

func storeCheck(store credentials.Store) health.Check {
	return func(ctx context.Context) error {
		_, err := store.Get(ctx, healthProbeOwner)
		if errors.Is(err, credentials.ErrNotFound) {
			return nil
		}
		return err
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
