package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/auth"
	"github.com/dmitrijs2005/capgallery/internal/client/client"
	"github.com/dmitrijs2005/capgallery/internal/client/config"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/services"
	"github.com/dmitrijs2005/capgallery/internal/logging"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	deps    services.Deps
	auth    *auth.Controller
	gallery *services.GalleryView
	profile *services.ProfileView
	reader  *bufio.Reader
	out     io.Writer

	mu      sync.Mutex
	current *services.Mount
}

func NewApp(c *config.Config, logger logging.Logger, m *metrics.Metrics) (*App, error) {
	apiClient, err := client.NewHTTPClient(c, client.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, logger, m), nil
}

func newApp(c *config.Config, apiClient client.Client, logger logging.Logger, m *metrics.Metrics) *App {
	deps := services.NewDeps(apiClient, logger, m)
	return &App{
		config:  c,
		logger:  logger,
		deps:    deps,
		auth:    auth.NewController(apiClient, deps.Sessions, logger),
		gallery: services.NewGalleryView(deps),
		profile: services.NewProfileView(deps),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run starts the session watcher, opens the gallery and blocks in the REPL
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.closeCurrent()

	unsubscribe := a.deps.Sessions.Subscribe(func(s models.Session) {
		a.logger.Info(ctx, "session changed", "status", s.Status, "username", s.Username)
	})
	defer unsubscribe()

	go a.StartSessionWatcher(ctx)

	a.Root(ctx)
}

// StartSessionWatcher re-probes the session until ctx is done. This is the
// only way an open view learns that the session expired.
func (a *App) StartSessionWatcher(ctx context.Context) {
	a.deps.Probe.Watch(ctx, a.config.SessionCheckInterval)
}

func (a *App) session() models.Session {
	return a.deps.Sessions.Current()
}

func (a *App) isLoggedIn() bool {
	return a.session().IsAuthenticated()
}

func (a *App) mount() *services.Mount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// swap makes m the current view and closes the previous one.
func (a *App) swap(m *services.Mount) {
	a.mu.Lock()
	prev := a.current
	a.current = m
	a.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (a *App) closeCurrent() {
	a.swap(nil)
}
