package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleManager, ParseRole("gerente"))
	assert.Equal(t, RoleSupervisor, ParseRole("supervisor"))
	assert.Equal(t, RoleEngineer, ParseRole("ingeniero"))
	assert.Equal(t, RoleUnauthenticated, ParseRole(""))
	assert.Equal(t, RoleUnauthenticated, ParseRole("Admin"))
	assert.Equal(t, RoleUnauthenticated, ParseRole("unauthenticated"))
}

func TestRoleAssignable(t *testing.T) {
	for _, role := range Roles {
		assert.Equal(t, role != RoleUnauthenticated, role.Assignable(), role)
	}
}

func TestSessionEffectiveRole(t *testing.T) {
	assert.Equal(t, RoleUnauthenticated, Session{Role: RoleAdmin}.EffectiveRole())
	assert.Equal(t, RoleAdmin, Session{Authenticated: true, Role: RoleAdmin}.EffectiveRole())
	assert.Equal(t, RoleUnauthenticated, AnonymousSession().EffectiveRole())
}
