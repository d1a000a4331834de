// ABOUTME: Role constants and normalization for upstream role spellings
// ABOUTME: Canonical form is upper-case with ROLE_ prefix (ROLE_ADMIN)

package models

import "strings"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// NormalizeRole maps any upstream spelling ("Admin", "admin", "ROLE_ADMIN")
// to the canonical ROLE_ form. Empty input stays empty.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return ""
	}
	if !strings.HasPrefix(role, "ROLE_") {
		role = "ROLE_" + role
	}
	return role
}

// NormalizeRoles normalizes each role and drops empties and duplicates,
// preserving first-seen order.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		n := NormalizeRole(r)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// HasRole reports whether the normalized role set contains the given role.
// The role argument is normalized before comparison.
func HasRole(roles []string, role string) bool {
	want := NormalizeRole(role)
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
