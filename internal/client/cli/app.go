// Package cli implements the interactive storefront console: catalog
// browsing, the cart, checkout, the account commands and the admin mirror.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/client/admin"
	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/cart"
	"github.com/dmitrijs2005/shopkeeper/internal/client/checkout"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	api      api.Client
	session  *session.Store
	cart     *cart.Store
	checkout *checkout.Service
	admin    *admin.Store

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database, builds the HTTP client and wires the
// stores together. The unauthorized hook connects the transport to the
// session: any 401 anywhere ends the session immediately.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, db, err := kv.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	httpClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, api.NewKVTokenSource(store), log)

	sessionStore := session.NewStore(httpClient, store, log)
	cartStore := cart.NewStore(ctx, store, log)

	app := &App{
		config:   c,
		log:      log,
		db:       db,
		api:      httpClient,
		session:  sessionStore,
		cart:     cartStore,
		checkout: checkout.NewService(cartStore, httpClient, log),
		admin:    admin.NewStore(httpClient, log),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	httpClient.SetOnUnauthorized(func() {
		sessionStore.Logout(context.Background())
		app.notifySessionExpired()
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	// restore a previous session before the first prompt; any failure just
	// leaves the user anonymous
	if err := a.session.CheckAuth(ctx); err != nil {
		a.log.Warn(ctx, "session re-validation failed", "error", err)
	}

	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) isAdmin() bool {
	return a.session.CurrentUser().IsAdmin()
}
