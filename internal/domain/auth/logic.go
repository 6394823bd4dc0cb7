package auth

import "slices"

// Allowed reports whether role holds perm under grants.
func Allowed(role, perm string, grants map[string][]string) bool {
	if role == "" || perm == "" {
		return false
	}
	return slices.Contains(grants[role], perm)
}

func KnownRole(role string) bool {
	return slices.Contains(Roles, role)
}

func KnownPermission(perm string) bool {
	return slices.Contains(AllPermissions, perm)
}

// NormalizePermissions validates perms and returns them de-duplicated in canonical order.
func NormalizePermissions(role string, perms []string) ([]string, error) {
	if !KnownRole(role) {
		return nil, ErrUnknownRole
	}
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		if !KnownPermission(p) {
			return nil, ErrUnknownPermission
		}
		set[p] = true
	}
	if role == RoleAdmin && !set[PermPermissionsManage] {
		return nil, ErrAdminLockout
	}
	out := make([]string, 0, len(set))
	for _, p := range AllPermissions {
		if set[p] {
			out = append(out, p)
		}
	}
	return out, nil
}
