package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func userWith(perms ...Permission) *User {
	return &User{
		ID:    "u-1",
		Email: "admin@test.local",
		Roles: []Role{{Name: "admin", Permissions: perms}},
	}
}

func TestHasPermissionNilUser(t *testing.T) {
	require.False(t, HasPermission(nil, "/product", "GET"))
	require.False(t, HasPermission(nil, "/product", AnyAction))
}

func TestHasPermissionGlobalWildcard(t *testing.T) {
	u := userWith(Permission{Resource: "/*", Actions: []string{"*"}})

	for _, resource := range []string{"/product", "/user/self", "/stats/earnings", "/gestion/promote_to_manager/3"} {
		for _, action := range []string{"GET", "POST", "PUT", "DELETE", AnyAction} {
			require.True(t, HasPermission(u, resource, action), "resource=%s action=%s", resource, action)
		}
	}
}

func TestHasPermissionExactResource(t *testing.T) {
	u := userWith(Permission{Resource: "/product", Actions: []string{"GET"}})

	require.True(t, HasPermission(u, "/product", "GET"))
	require.False(t, HasPermission(u, "/product", "DELETE"))
	require.False(t, HasPermission(u, "/user", "GET"))

	// No action means a resource-level check only.
	require.True(t, HasPermission(u, "/product", AnyAction))
	require.False(t, HasPermission(u, "/user", AnyAction))
}

func TestHasPermissionActionWildcardQuery(t *testing.T) {
	u := userWith(Permission{Resource: "/product", Actions: []string{"GET"}})

	// Querying with "*" succeeds as soon as the resource is granted,
	// regardless of the permission's action list.
	require.True(t, HasPermission(u, "/product", "*"))
	require.False(t, HasPermission(u, "/user", "*"))
}

func TestHasPermissionPrefixWildcard(t *testing.T) {
	u := userWith(Permission{Resource: "/gestion/*", Actions: []string{"GET"}})

	require.True(t, HasPermission(u, "/gestion/promote_to_manager/7", "GET"))
	require.True(t, HasPermission(u, "/gestion/demote_to_user/7", AnyAction))
	require.False(t, HasPermission(u, "/product", "GET"))

	// The prefix test is a literal string prefix: "/gestionnaire" starts
	// with "/gestion" even without a path separator. This is the deployed
	// contract, asserted here so a future "fix" shows up as a diff.
	require.True(t, HasPermission(u, "/gestionnaire", "GET"))
}

func TestHasPermissionWildcardActionEntry(t *testing.T) {
	// A "*" entry in the granted action list covers every concrete action,
	// not just queries that ask for "*".
	u := userWith(Permission{Resource: "/product", Actions: []string{"*"}})

	for _, action := range []string{"GET", "POST", "PUT", "DELETE"} {
		require.True(t, HasPermission(u, "/product", action), "action=%s", action)
	}
	require.False(t, HasPermission(u, "/user", "GET"))
}

func TestHasPermissionActionList(t *testing.T) {
	u := userWith(Permission{Resource: "/product", Actions: []string{"GET", "POST"}})

	require.True(t, HasPermission(u, "/product", "GET"))
	require.True(t, HasPermission(u, "/product", "POST"))
	require.False(t, HasPermission(u, "/product", "PUT"))
	require.False(t, HasPermission(u, "/product", "DELETE"))
}

func TestHasPermissionAcrossRoles(t *testing.T) {
	u := &User{
		ID: "u-2",
		Roles: []Role{
			{Name: "viewer", Permissions: []Permission{{Resource: "/product", Actions: []string{"GET"}}}},
			{Name: "manager", Permissions: []Permission{{Resource: "/user", Actions: []string{"GET", "PUT"}}}},
		},
	}

	require.True(t, HasPermission(u, "/product", "GET"))
	require.True(t, HasPermission(u, "/user", "PUT"))
	require.False(t, HasPermission(u, "/product", "PUT"))

	// Duplicate roles contribute the same grants, never conflicts.
	u.Roles = append(u.Roles, u.Roles[0])
	require.True(t, HasPermission(u, "/product", "GET"))
}

func TestHasPermissionEmptyRoleSets(t *testing.T) {
	require.False(t, HasPermission(&User{ID: "u-3"}, "/product", "GET"))
	require.False(t, HasPermission(&User{ID: "u-4", Roles: []Role{{Name: "empty"}}}, "/product", AnyAction))
}

func TestHasPermissionAdminScenario(t *testing.T) {
	admin := userWith(Permission{Resource: "/*", Actions: []string{"*"}})
	require.True(t, HasPermission(admin, "/product", "DELETE"))
}
