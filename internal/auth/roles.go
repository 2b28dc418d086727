package auth

// Role is the caller's access level. Viewer reads settlement data,
// operator mutates events and payments, admin additionally adjusts the
// fund ledger by hand.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole maps a raw claim value to a known role. Unknown values
// report false and carry no privileges.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role meets or exceeds required.
func RoleAtLeast(role, required Role) bool {
	return roleRanks[role] >= roleRanks[required]
}
