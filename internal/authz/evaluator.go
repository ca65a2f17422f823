package authz

import "strings"

// AnyAction makes HasPermission check resource access only.
const AnyAction = ""

// ActionWildcard matches every action of a resource-granting permission.
const ActionWildcard = "*"

// HasPermission reports whether the user may perform action on resource.
//
// A nil user always evaluates to false. An empty action asks "any access to
// this resource at all". Evaluation returns true on the first permission,
// across all roles, that grants the resource and (when asked) the action;
// there is no precedence between exact matches and wildcards because any
// single match decides the outcome.
func HasPermission(u *User, resource, action string) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			if permits(perm, resource, action) {
				return true
			}
		}
	}
	return false
}

func permits(perm Permission, resource, action string) bool {
	if !grantsResource(perm.Resource, resource) {
		return false
	}
	if action == AnyAction || action == ActionWildcard {
		return true
	}
	for _, allowed := range perm.Actions {
		if allowed == action || allowed == ActionWildcard {
			return true
		}
	}
	return false
}

// grantsResource applies the three matching rules: global wildcard, exact
// match, prefix wildcard. The prefix test is a plain string prefix, so
// "/gestion/*" also grants "/gestionnaire". That looseness matches the
// deployed matcher and is covered by tests; tightening it to a
// boundary-aware match would silently revoke grants.
func grantsResource(pattern, resource string) bool {
	if pattern == "/*" || pattern == resource {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(resource, strings.TrimSuffix(pattern, "/*"))
	}
	return false
}
