package domain

const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
	// RoleService is carried by tokens minted for the portal's own backend modules (event producers).
	RoleService = "service"
)

// RecipientKindForRole maps a bearer role to the recipient namespace it reads from.
func RecipientKindForRole(role string) (RecipientKind, bool) {
	switch role {
	case RoleStudent:
		return RecipientStudent, true
	case RoleFaculty:
		return RecipientFaculty, true
	}
	return "", false
}
