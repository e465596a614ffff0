// Package models defines the client-side data model for the back-office:
// the authenticated Identity and the role vocabulary used by guarded screens.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role names the access level a back-office account holds. The set mirrors
// the roles the API issues; the client never invents roles of its own.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleEditor    Role = "Editor"
	RoleVolunteer Role = "Volunteer"
	RoleMember    Role = "Member"
)

// ErrIncompleteIdentity is returned when a persisted or received identity
// record is missing required fields. Callers match it with errors.Is.
var ErrIncompleteIdentity = errors.New("incomplete identity record")

// Identity is the authenticated principal. An Identity is either fully
// populated or not held at all; a partially filled record never enters
// session state.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Validate reports ErrIncompleteIdentity unless every required field is set.
// ProfilePic is optional.
func (i *Identity) Validate() error {
	switch {
	case i.ID == "":
		return fmt.Errorf("%w: missing id", ErrIncompleteIdentity)
	case i.Name == "":
		return fmt.Errorf("%w: missing name", ErrIncompleteIdentity)
	case i.Email == "":
		return fmt.Errorf("%w: missing email", ErrIncompleteIdentity)
	case i.Role == "":
		return fmt.Errorf("%w: missing role", ErrIncompleteIdentity)
	}
	return nil
}

// Clone returns an independent copy, so readers of session state cannot
// mutate the store's record through a shared pointer.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// ParseIdentity decodes and validates a JSON identity record, e.g. the
// persisted "user" storage value. A syntactically valid but incomplete
// record is rejected the same way as malformed JSON.
func ParseIdentity(data []byte) (*Identity, error) {
	var i Identity
	if err := json.Unmarshal(data, &i); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return &i, nil
}
