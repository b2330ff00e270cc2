package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/neurofit/internal/client/client"
	"github.com/dmitrijs2005/neurofit/internal/client/config"
	"github.com/dmitrijs2005/neurofit/internal/client/services"
	"github.com/dmitrijs2005/neurofit/internal/client/session"
	"github.com/dmitrijs2005/neurofit/internal/logging"
)

const appName = "NeuroFit"

type App struct {
	config       *config.Config
	db           *sql.DB
	session      *session.Session
	client       client.Client
	authService  services.AuthService
	coachService services.CoachService
	log          logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// expired is set by the reauth hook and reported once by the REPL.
	expired atomic.Bool
}

// NewApp opens the session database and wires the API client and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := session.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.SessionDB, "error", err)
		return nil, err
	}

	app := &App{
		config:  c,
		db:      db,
		session: session.New(session.NewSQLiteStore(db)),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	apiClient, err := client.New(c.APIBaseURL, app.session,
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithLogger(log.With("component", "client")),
		client.WithReauthHandler(app.onSessionExpired),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app.client = apiClient
	app.authService = services.NewAuthService(apiClient, app.session, log.With("component", "auth"))
	app.coachService = services.NewCoachService(apiClient, "")
	return app, nil
}

// Run restores a saved session, if any, and blocks in the REPL until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.banner()
	if u, err := a.authService.Restore(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not restore the previous session:", describe(err))
	} else if u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.Username)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "error closing database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) banner() {
	fmt.Fprint(a.out, figure.NewFigure(appName, "cybermedium", true).String())
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Type 'help' for commands.")
}

// onSessionExpired is the client's reauth hook: the refresh credential was
// rejected and the session is already gone.
func (a *App) onSessionExpired(ctx context.Context, cause error) {
	a.authService.Forget()
	a.coachService.Reset()
	a.expired.Store(true)
}

// takeExpired reports a session expiry once.
func (a *App) takeExpired() bool {
	return a.expired.Swap(false)
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

func (a *App) getStatus() string {
	if u := a.authService.CurrentUser(); u != nil {
		return u.Username
	}
	if a.isLoggedIn() {
		return "logged in"
	}
	return "guest"
}
