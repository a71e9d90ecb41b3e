package domain

// Role is a user's authorization level
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// roleGrants maps each role to the full set of roles it is granted.
// Higher roles subsume lower ones: admin > mentor > student.
var roleGrants = map[Role][]Role{
	RoleStudent: {RoleStudent},
	RoleMentor:  {RoleMentor, RoleStudent},
	RoleAdmin:   {RoleAdmin, RoleMentor, RoleStudent},
}

// ValidRole reports whether r is a known role
func ValidRole(r Role) bool {
	_, ok := roleGrants[r]
	return ok
}

// Grants returns the set of roles granted by r, including r itself.
// Unknown roles grant nothing.
func (r Role) Grants() []Role {
	return roleGrants[r]
}

// Satisfies reports whether r grants at least one of the required roles.
// An empty requirement is satisfied by any known role.
func (r Role) Satisfies(required ...Role) bool {
	granted := roleGrants[r]
	if granted == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, need := range required {
		for _, have := range granted {
			if have == need {
				return true
			}
		}
	}
	return false
}
