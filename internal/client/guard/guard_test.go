package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/client/session"
)

func authedState(role models.Role) session.State {
	return session.State{
		Identity: &models.Identity{ID: "1", Name: "A", Email: "a@b.com", Role: role},
		Token:    "tok123",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		roles []models.Role
		want  Decision
	}{
		{
			name:  "boot loading wins even with identity present",
			state: session.State{Identity: &models.Identity{ID: "1", Name: "A", Email: "a@b.com", Role: models.RoleAdmin}, Token: "t", BootLoading: true},
			roles: nil,
			want:  ShowLoading,
		},
		{
			name:  "boot loading without identity",
			state: session.State{BootLoading: true},
			want:  ShowLoading,
		},
		{
			name:  "absent identity redirects",
			state: session.State{},
			want:  RedirectLogin,
		},
		{
			name:  "absent identity redirects regardless of roles",
			state: session.State{},
			roles: []models.Role{models.RoleAdmin},
			want:  RedirectLogin,
		},
		{
			name:  "authenticated, no role list",
			state: authedState(models.RoleVolunteer),
			want:  Render,
		},
		{
			name:  "authenticated, empty role list",
			state: authedState(models.RoleVolunteer),
			roles: []models.Role{},
			want:  Render,
		},
		{
			name:  "role not in list redirects",
			state: authedState(models.RoleVolunteer),
			roles: []models.Role{models.RoleAdmin},
			want:  RedirectLogin,
		},
		{
			name:  "role in list renders",
			state: authedState(models.RoleAdmin),
			roles: []models.Role{models.RoleAdmin, models.RoleEditor},
			want:  Render,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.state, tc.roles))
		})
	}
}

func TestEvaluate_Stateless(t *testing.T) {
	// the same input always yields the same decision; no memory of prior calls
	st := authedState(models.RoleAdmin)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Render, Evaluate(st, nil))
		assert.Equal(t, RedirectLogin, Evaluate(session.State{}, nil))
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "loading", ShowLoading.String())
	assert.Equal(t, "redirect-login", RedirectLogin.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "unknown", Decision(99).String())
}
