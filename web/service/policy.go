package service

import (
	"taskpanel/database/model"
)

// Authorization rules are pure functions over role membership and, for
// task-scoped checks, the assignee field. Callers translate a deny into the
// transport-level response (401/403/redirect).

// HasAnyRole reports whether the user holds at least one of the named roles.
func HasAnyRole(u *model.User, names ...string) bool {
	if u == nil {
		return false
	}
	for _, name := range names {
		if u.HasRole(name) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds Admin or SuperAdmin.
func IsAdmin(u *model.User) bool {
	return HasAnyRole(u, model.RoleAdmin, model.RoleSuperAdmin)
}

// IsSuperAdmin reports whether the user holds SuperAdmin. User and role
// management requires this.
func IsSuperAdmin(u *model.User) bool {
	return HasAnyRole(u, model.RoleSuperAdmin)
}

// CanUpdateTask allows admins and the task's assignee. Admins may update
// tasks assigned to other admins.
func CanUpdateTask(u *model.User, t *model.Task) bool {
	if IsAdmin(u) {
		return true
	}
	return u != nil && t.AssignedToId == u.Id
}

// CanViewReport restricts completion report access to admins. The assignee
// themself is deliberately not permitted through this check.
func CanViewReport(u *model.User) bool {
	return IsAdmin(u)
}
