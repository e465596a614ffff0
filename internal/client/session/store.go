// Package session owns the authenticated-session lifecycle for the
// back-office client: hydrate-on-boot, login, signup, profile update, and
// logout, with durable persistence across restarts.
//
// The Store is the single writer of session state. Everything else — the
// route guard, the admin screens — reads it through Snapshot or a
// subscription and must re-read on change rather than cache a value, since
// a logout elsewhere invalidates previously rendered screens.
//
// # Invariants
//
//   - Identity and token are adopted, persisted, and cleared together;
//     state never holds one without the other.
//   - BootLoading is true only until the one-shot Hydrate completes and
//     never becomes true again.
//   - A mutation whose response arrives after a newer mutation has been
//     applied is discarded (monotonic sequencing, stale responses lose).
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hopespring/backoffice/internal/client/api"
	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/client/storage"
	"github.com/hopespring/backoffice/internal/dbx"
	"github.com/hopespring/backoffice/internal/logging"
)

var (
	// ErrNoSession is returned by operations that require a logged-in
	// identity, e.g. UpdateProfile.
	ErrNoSession = errors.New("no active session")

	// ErrValidation is returned by the prompt layer when a required field
	// is empty; it never reaches the API.
	ErrValidation = errors.New("required field missing")
)

// State is the externally visible session snapshot.
type State struct {
	Identity    *models.Identity
	Token       string
	BootLoading bool
}

// LoggedIn reports whether an identity is present.
func (s State) LoggedIn() bool { return s.Identity != nil }

// Store is the single source of truth for "who is logged in".
type Store struct {
	api api.AuthAPI
	db  *sql.DB
	log logging.Logger

	// commitMu serializes persist+apply sections so durable storage and
	// in-memory state cannot diverge under concurrent mutations.
	commitMu sync.Mutex

	mu       sync.Mutex
	state    State
	hydrated bool
	issued   uint64
	applied  uint64
	subs     map[int]func(State)
	nextSub  int
}

// NewStore builds a Store over the given API client and local database.
// The store starts in boot-loading state; call Hydrate once at startup.
func NewStore(apiClient api.AuthAPI, db *sql.DB, log logging.Logger) *Store {
	return &Store{
		api:   apiClient,
		db:    db,
		log:   log,
		state: State{BootLoading: true},
		subs:  make(map[int]func(State)),
	}
}

// Hydrate restores a persisted session, if any. It runs at most once per
// Store; later calls are no-ops. No network request is made: only local
// storage is consulted. A missing, lone, or corrupt record silently yields
// an empty session. BootLoading is false after Hydrate returns.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	identity, token := s.readPersisted(ctx)

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrated = true
	s.state.BootLoading = false
	if identity != nil && token != "" {
		s.state.Identity = identity
		s.state.Token = token
	}
	st, subs := s.snapshotAndSubsLocked()
	s.mu.Unlock()

	if st.LoggedIn() {
		s.log.Info(ctx, "session restored", "user", st.Identity.ID, "role", st.Identity.Role)
	} else {
		s.log.Debug(ctx, "no persisted session")
	}
	notify(subs, st)
}

// readPersisted loads the two storage keys. Both must be present and the
// identity must parse; anything else reads as no session.
func (s *Store) readPersisted(ctx context.Context) (*models.Identity, string) {
	repo := storage.NewSQLiteRepository(s.db)

	tokenRaw, err := repo.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.Warn(ctx, "reading persisted token", "err", err)
		return nil, ""
	}
	userRaw, err := repo.Get(ctx, storage.KeyUser)
	if err != nil {
		s.log.Warn(ctx, "reading persisted identity", "err", err)
		return nil, ""
	}
	if len(tokenRaw) == 0 || len(userRaw) == 0 {
		return nil, ""
	}

	identity, err := models.ParseIdentity(userRaw)
	if err != nil {
		s.log.Warn(ctx, "persisted identity is corrupt, starting logged out", "err", err)
		return nil, ""
	}
	return identity, string(tokenRaw)
}

// Login exchanges credentials for a session. On failure the error
// propagates unchanged and state keeps its pre-call value.
func (s *Store) Login(ctx context.Context, email, password string) error {
	seq := s.begin()

	identity, token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, seq, identity, token)
}

// Signup registers a new account. Its success path is identical to Login's:
// the returned identity/token pair becomes the current session.
func (s *Store) Signup(ctx context.Context, req api.SignupRequest) error {
	seq := s.begin()

	identity, token, err := s.api.Signup(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, seq, identity, token)
}

// UpdateProfile replaces the logged-in identity wholesale with the API's
// returned record and re-persists it. The token is untouched. Returns
// ErrNoSession when nobody is logged in.
func (s *Store) UpdateProfile(ctx context.Context, req api.ProfileUpdate) error {
	s.mu.Lock()
	cur := s.state.Identity.Clone()
	s.mu.Unlock()
	if cur == nil {
		return ErrNoSession
	}

	seq := s.begin()

	identity, err := s.api.UpdateProfile(ctx, cur.ID, req)
	if err != nil {
		return err
	}

	userJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	return s.commit(ctx, seq,
		func(ctx context.Context, repo storage.Repository) error {
			return repo.Set(ctx, storage.KeyUser, userJSON)
		},
		func(st *State) {
			st.Identity = identity
		})
}

// Logout unconditionally drops the session: state first, then durable
// storage and with it the default header attachment. It cannot fail; a
// storage hiccup is logged and the in-memory session is gone regardless.
// Calling Logout with no session is a no-op.
func (s *Store) Logout(ctx context.Context) {
	seq := s.begin()

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	s.state.Identity = nil
	s.state.Token = ""
	if seq > s.applied {
		s.applied = seq
	}
	st, subs := s.snapshotAndSubsLocked()
	s.mu.Unlock()

	notify(subs, st)

	repo := storage.NewSQLiteRepository(s.db)
	if err := repo.Delete(ctx, storage.KeyToken); err != nil {
		s.log.Warn(ctx, "clearing persisted token", "err", err)
	}
	if err := repo.Delete(ctx, storage.KeyUser); err != nil {
		s.log.Warn(ctx, "clearing persisted identity", "err", err)
	}
	s.log.Info(ctx, "logged out")
}

// AuthHeader builds the headers for an authenticated outbound request:
// a bearer Authorization header while a session exists, empty otherwise.
// Call sites consume this explicitly; no shared client is mutated.
func (s *Store) AuthHeader() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.state.Token}
}

// Snapshot returns a copy of the current state. The identity is cloned so
// callers cannot reach the store's record.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Identity = st.Identity.Clone()
	return st
}

// Subscribe registers fn to run with a fresh snapshot after every state
// change. The returned id unsubscribes via Unsubscribe; always do so on
// teardown. Callbacks run on the mutating goroutine and must not invoke
// store mutations.
func (s *Store) Subscribe(fn func(State)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a previously registered subscriber.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// begin stamps a mutation with the next sequence number.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// adopt persists and applies a fresh identity/token pair as one commit.
func (s *Store) adopt(ctx context.Context, seq uint64, identity *models.Identity, token string) error {
	userJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	return s.commit(ctx, seq,
		func(ctx context.Context, repo storage.Repository) error {
			if err := repo.Set(ctx, storage.KeyToken, []byte(token)); err != nil {
				return err
			}
			return repo.Set(ctx, storage.KeyUser, userJSON)
		},
		func(st *State) {
			st.Identity = identity
			st.Token = token
		})
}

// commit is the single path through which successful mutations reach state.
// It persists inside a transaction, then applies to the in-memory cell, in
// issue order: a response stamped older than the last applied mutation is
// discarded without touching storage or state.
func (s *Store) commit(ctx context.Context, seq uint64, persist func(context.Context, storage.Repository) error, apply func(*State)) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	stale := seq < s.applied
	s.mu.Unlock()
	if stale {
		s.log.Warn(ctx, "discarding stale session mutation", "seq", seq)
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return persist(ctx, storage.NewSQLiteRepository(tx))
	})
	if err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	s.mu.Lock()
	apply(&s.state)
	if seq > s.applied {
		s.applied = seq
	}
	st, subs := s.snapshotAndSubsLocked()
	s.mu.Unlock()

	notify(subs, st)
	return nil
}

// snapshotAndSubsLocked copies state and the subscriber list. Caller holds mu.
func (s *Store) snapshotAndSubsLocked() (State, []func(State)) {
	st := s.state
	st.Identity = st.Identity.Clone()

	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return st, subs
}

// notify runs subscribers outside any store lock.
func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
