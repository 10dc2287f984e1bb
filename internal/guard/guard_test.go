package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"barpos/internal/model"
	"barpos/internal/session"
)

func authenticated(role model.Role) session.State {
	return session.State{
		IsAuthenticated: true,
		Role:            role,
		Token:           "tok",
	}
}

func TestRequireAuth(t *testing.T) {
	ok, redirect := RequireAuth(authenticated(model.RoleServeur))
	assert.True(t, ok)
	assert.Empty(t, redirect)

	ok, redirect = RequireAuth(session.State{})
	assert.False(t, ok)
	assert.Equal(t, RouteLogin, redirect)
}

func TestRequireBarman(t *testing.T) {
	cases := []struct {
		name  string
		state session.State
		want  bool
	}{
		{"barman", authenticated(model.RoleBarman), true},
		{"serveur", authenticated(model.RoleServeur), false},
		{"admin", authenticated(model.RoleAdmin), false},
		{"unauthenticated", session.State{}, false},
		{"role without auth", session.State{Role: model.RoleBarman}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, redirect := RequireBarman(tc.state)
			assert.Equal(t, tc.want, ok)
			if tc.want {
				assert.Empty(t, redirect)
			} else {
				assert.Equal(t, RouteLogin, redirect)
			}
		})
	}
}
