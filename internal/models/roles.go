package models

// Role constants for the two access tiers
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// roleRank orders roles so that a higher rank implies every lower one
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
}

// IsValidRole reports whether role is a known access tier
func IsValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// HasRole reports whether a session holding `have` may act as `want`.
// Editors implicitly hold viewer permissions.
func HasRole(have, want string) bool {
	h, ok := roleRank[have]
	if !ok {
		return false
	}
	w, ok := roleRank[want]
	if !ok {
		return false
	}
	return h >= w
}
