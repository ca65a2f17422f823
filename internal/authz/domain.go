// Package authz holds the role/permission model returned by the storefront
// identity endpoint and the evaluator used to gate admin UI affordances.
//
// Decisions made here are a convenience for the interface only. The remote
// storefront API re-checks every permission server side; a true result from
// this package must never be treated as an authorization grant.
package authz

// Permission grants a set of actions on a resource pattern.
//
// Resource is either an exact path ("/product"), the global wildcard "/*",
// or a prefix wildcard ending in "/*" ("/gestion/*"). Actions holds HTTP
// verbs ("GET", "POST", "PUT", "DELETE") or the wildcard "*".
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Role groups permissions under a name. Duplicate role names in a user's
// role list are harmless, each entry just contributes its permissions.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// User mirrors the identity payload of GET /user/self.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Roles     []Role `json:"roles"`
}
