// Package cli provides the interactive back-office command-line client.
//
// It wires configuration, local session storage, the REST API client, and an
// interactive REPL whose administrative screens are wrapped by the route
// guard. Typical flow: hydrate the persisted session, then execute user
// commands until exit.
//
// Key features:
//   - Login / Signup / Logout and profile updates
//   - Guarded admin screens: contacts, events, gallery, blogs, media,
//     ideas, subscriptions
//   - Durable sessions: a restart restores the previous login without a
//     network round trip
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and the screens table for details.
package cli
