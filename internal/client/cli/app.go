package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/hopespring/backoffice/internal/client/api"
	"github.com/hopespring/backoffice/internal/client/config"
	"github.com/hopespring/backoffice/internal/client/guard"
	"github.com/hopespring/backoffice/internal/client/session"
	"github.com/hopespring/backoffice/internal/client/storage"
	"github.com/hopespring/backoffice/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	api     api.Client
	session *session.Store
	guard   *guard.Guard
	reader  *bufio.Reader
	log     logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewDefault()

	db, err := storage.Open(ctx, c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	apiClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	store := session.NewStore(apiClient, db, log)
	// the store owns the auth header; the client consults it per request
	apiClient.SetAuthHeaderFunc(store.AuthHeader)

	return &App{
		config:  c,
		api:     apiClient,
		session: store,
		guard:   guard.New(store),
		reader:  bufio.NewReader(os.Stdin),
		log:     log,
	}, nil
}

// Run hydrates the persisted session and enters the REPL. It blocks until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	a.session.Hydrate(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().LoggedIn()
}

// getStatus renders the prompt suffix: "(email role)" when logged in.
func (a *App) getStatus() string {
	st := a.session.Snapshot()
	if !st.LoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s %s)", st.Identity.Email, st.Identity.Role)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Back-office CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
