// Package api contains the REST transport for the back-office client.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts (AuthAPI, ResourceAPI) to talk to the
//     site's backend: credential exchange plus the CRUD resource calls the
//     admin screens issue.
//  2. A concrete net/http implementation (HTTPClient) that stamps every
//     request with a correlation ID, attaches the bearer credential through
//     an explicitly injected header builder, and maps HTTP failures to
//     sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrInvalidCredentials, ErrNetwork, ErrServer.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package api

import (
	"context"
	"io"

	"github.com/hopespring/backoffice/internal/client/models"
)

// AuthHeaderFunc builds the headers that authenticate an outbound request.
// It returns an empty map when no session is established. The session store
// owns the implementation; call sites consume it explicitly instead of
// mutating a shared HTTP client.
type AuthHeaderFunc func() map[string]string

// FileAttachment is a named binary part of a multipart request,
// e.g. a profile picture.
type FileAttachment struct {
	Name   string
	Reader io.Reader
}

// SignupRequest is the registration payload. Mobile and ProfilePic are
// optional; everything else is required by the API.
type SignupRequest struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	Mobile     string
	ProfilePic *FileAttachment
}

// ProfileUpdate is the payload for changing the logged-in account.
// Password and ProfilePic are optional; an empty password means "keep".
type ProfileUpdate struct {
	Name       string
	Email      string
	Password   string
	ProfilePic *FileAttachment
}

// AuthAPI is the credential-exchange surface consumed by the session store.
//
// Contract:
//   - Login: exchange email+password for an identity and a bearer token.
//   - Signup: register an account; succeeds with the same pair as Login.
//   - UpdateProfile: replace the account record; the token is not reissued.
//
// All methods must honor context cancellation/timeouts.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.Identity, string, error)
	Signup(ctx context.Context, req SignupRequest) (*models.Identity, string, error)
	UpdateProfile(ctx context.Context, id string, req ProfileUpdate) (*models.Identity, error)
}

// ResourceAPI is the generic CRUD surface the admin screens use. Every call
// is authenticated via the injected AuthHeaderFunc.
type ResourceAPI interface {
	List(ctx context.Context, res Resource) ([]map[string]any, error)
	Delete(ctx context.Context, res Resource, id string) error
}

// Client is the full API contract implemented by HTTPClient.
type Client interface {
	AuthAPI
	ResourceAPI
	Close() error
}
