package app

import (
	"context"
	"net/http"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/batch"
	"site_analyzer/internal/config"
	"site_analyzer/internal/history"
	"site_analyzer/internal/httpapi"
	"site_analyzer/internal/logger"
	"site_analyzer/internal/session"
	"site_analyzer/internal/watch"
)

// App wires the client components together for serve/watch mode.
type App struct {
	cfg     config.Config
	store   *history.Store
	session *session.Session
	runner  *batch.Runner
	watcher *watch.Watcher
	handler http.Handler
}

func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	client := analyzer.New(cfg.BaseURL, cfg.HTTPTimeout())
	sess := session.New(client)
	runner := batch.NewRunner(cfg, client, store)
	watcher := watch.New(cfg, runner)
	router := httpapi.NewRouter(cfg, sess, store)
	return &App{
		cfg:     cfg,
		store:   store,
		session: sess,
		runner:  runner,
		watcher: watcher,
		handler: router.Handler(),
	}, nil
}

// Run starts workers, the inbox watcher, and the HTTP server, and blocks
// until the context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.runner.Start(ctx)
	defer a.runner.Stop()
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	if a.cfg.EnableWatcher {
		if err := a.watcher.Backfill(); err != nil {
			logger.Log.WithError(err).Warn("backfill inbox")
		}
	}
	srv := &http.Server{Addr: ":" + a.cfg.HTTPPort, Handler: a.handler}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	logger.Log.Infof("http listening on %s", a.cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Close() error { return a.store.Close() }

func (a *App) Runner() *batch.Runner     { return a.runner }
func (a *App) Session() *session.Session { return a.session }
func (a *App) Handler() http.Handler     { return a.handler }
