package app

import (
	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/config"
	"github.com/abdulachik/blogfront/internal/health"
	"github.com/abdulachik/blogfront/internal/storage"
	"github.com/abdulachik/blogfront/internal/web"
	"github.com/abdulachik/blogfront/internal/workflow"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Health   *health.Tracker
	API      *api.Client
	Uploader *storage.Uploader
	Sessions *web.Registry
}

// New creates a new application instance with all dependencies wired up.
func New(cfg *config.Config) *App {
	tracker := health.New()

	client := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Health:  tracker,
	})

	uploader := storage.NewUploader(storage.Config{
		Timeout: cfg.HTTPTimeout,
		Health:  tracker,
	})

	a := &App{
		Config:   cfg,
		Health:   tracker,
		API:      client,
		Uploader: uploader,
	}
	a.Sessions = web.NewRegistry(cfg.SessionIdleTimeout, a.NewSession)
	return a
}

// NewSession creates a workflow session bound to the app's clients.
func (a *App) NewSession() *workflow.Session {
	return workflow.NewSession(a.API, a.Uploader)
}

// WebConfig returns the router configuration for the web front-end.
func (a *App) WebConfig() web.Config {
	return web.Config{
		Posts:            a.API,
		Sessions:         a.Sessions,
		Health:           a.Health,
		PlaceholderCount: a.Config.PlaceholderCount,
		ExcerptLength:    a.Config.ExcerptLength,
		MaxUploadBytes:   a.Config.MaxUploadBytes,
	}
}
