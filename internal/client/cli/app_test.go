package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopespring/backoffice/internal/client/api"
	"github.com/hopespring/backoffice/internal/client/config"
	"github.com/hopespring/backoffice/internal/client/guard"
	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/client/session"
	"github.com/hopespring/backoffice/internal/logging"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:cliapp?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS session_store (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
DELETE FROM session_store;
`)
	require.NoError(t, err)
	return db
}

// newTestApp wires a real session store and HTTP client against an httptest
// backend, mirroring the production wiring in NewApp.
func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db := setupDB(t)
	log := testLogger()

	apiClient := api.NewHTTPClient(srv.URL, 5*time.Second, log)
	store := session.NewStore(apiClient, db, log)
	apiClient.SetAuthHeaderFunc(store.AuthHeader)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:  cfg,
		api:     apiClient,
		session: store,
		guard:   guard.New(store),
		reader:  bufio.NewReader(strings.NewReader("")),
		log:     log,
	}
}

// stubPrompts replaces the interactive input seams with canned answers.
// Text answers are consumed in order; the password is fixed.
func stubPrompts(t *testing.T, answers []string, password string) {
	t.Helper()

	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", nil
		}
		a := answers[i]
		i++
		return a, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(args...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func loginHandler(role models.Role, token string, loginCalls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/api/auth/login":
			loginCalls.Add(1)
			fmt.Fprintf(w, `{"user":{"id":"1","name":"A","email":"a@b.com","role":%q},"token":%q}`, role, token)
		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/api/"):
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestLogin_EmptyEmailFailsValidationBeforeNetwork(t *testing.T) {
	capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok", &loginCalls))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{""}, "pw")

	err := app.Login(context.Background())
	require.ErrorIs(t, err, session.ErrValidation)
	assert.Zero(t, loginCalls.Load(), "no network call before validation passes")
}

func TestLogin_EmptyPasswordFailsValidation(t *testing.T) {
	capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok", &loginCalls))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{"a@b.com"}, "")

	err := app.Login(context.Background())
	require.ErrorIs(t, err, session.ErrValidation)
	assert.Zero(t, loginCalls.Load())
}

func TestOpen_BeforeHydration_ShowsLoadingOnly(t *testing.T) {
	lines := capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok", &loginCalls))
	// no Hydrate: boot loading still true

	require.NoError(t, app.Open(context.Background(), "contacts"))

	assert.Contains(t, strings.Join(*lines, ""), "Loading session...")
	assert.Zero(t, loginCalls.Load(), "loading placeholder must not trigger a login")
}

func TestOpen_LoggedOut_RedirectsToLogin(t *testing.T) {
	capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok123", &loginCalls))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{"a@b.com"}, "secret")

	// the guard bounces to the login form, which succeeds
	require.NoError(t, app.Open(context.Background(), "contacts"))
	require.Equal(t, int32(1), loginCalls.Load())
	require.True(t, app.isLoggedIn())

	// the next navigation renders
	lines := capturePrints(t)
	require.NoError(t, app.Open(context.Background(), "contacts"))
	assert.Contains(t, strings.Join(*lines, ""), "Contact messages")
}

func TestRender_SendsBearerToken(t *testing.T) {
	capturePrints(t)
	var gotAuth atomic.Value
	var loginCalls atomic.Int32

	base := loginHandler(models.RoleAdmin, "tok123", &loginCalls)
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/contacts" {
			gotAuth.Store(r.Header.Get("Authorization"))
		}
		base(w, r)
	}))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{"a@b.com"}, "secret")
	require.NoError(t, app.Login(context.Background()))

	require.NoError(t, app.Open(context.Background(), "contacts"))
	assert.Equal(t, "Bearer tok123", gotAuth.Load())
}

func TestOpen_RoleRestrictedScreenRedirectsVolunteer(t *testing.T) {
	lines := capturePrints(t)
	var loginCalls atomic.Int32
	var listedSubscriptions atomic.Bool

	base := loginHandler(models.RoleVolunteer, "tok7", &loginCalls)
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/subscriptions" {
			listedSubscriptions.Store(true)
		}
		base(w, r)
	}))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{"v@b.com"}, "pw")
	require.NoError(t, app.Login(context.Background()))

	// the next login attempt from the redirect fails validation fast
	stubPrompts(t, []string{""}, "")
	_ = app.Open(context.Background(), "subscriptions")

	assert.Contains(t, strings.Join(*lines, ""), "Please log in to continue.")
	assert.False(t, listedSubscriptions.Load(), "restricted screen must not hit the API")
	assert.Equal(t, guard.RedirectLogin, app.guard.Check(models.RoleAdmin))
}

func TestLogout_ClearsGuardedAccess(t *testing.T) {
	capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok123", &loginCalls))
	app.session.Hydrate(context.Background())

	stubPrompts(t, []string{"a@b.com"}, "secret")
	require.NoError(t, app.Login(context.Background()))
	require.Equal(t, guard.Render, app.guard.Check())

	require.NoError(t, app.Logout(context.Background()))
	assert.Equal(t, guard.RedirectLogin, app.guard.Check())
}

func TestOpen_UnknownScreen(t *testing.T) {
	lines := capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok", &loginCalls))
	app.session.Hydrate(context.Background())

	require.NoError(t, app.Open(context.Background(), "nope"))
	assert.Contains(t, strings.Join(*lines, ""), "Unknown screen: nope")
}

func TestWhoAmI(t *testing.T) {
	lines := capturePrints(t)
	var loginCalls atomic.Int32
	app := newTestApp(t, loginHandler(models.RoleAdmin, "tok", &loginCalls))
	app.session.Hydrate(context.Background())

	require.NoError(t, app.WhoAmI(context.Background()))
	assert.Contains(t, strings.Join(*lines, ""), "Not logged in.")

	stubPrompts(t, []string{"a@b.com"}, "secret")
	require.NoError(t, app.Login(context.Background()))

	require.NoError(t, app.WhoAmI(context.Background()))
	assert.Contains(t, strings.Join(*lines, ""), "a@b.com")
}
