package domain

// Role of the current actor as supplied by the identity provider
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// IsValid returns true for a known role
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Identity is the authenticated user of a request
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// IsTeacher returns true if the actor acts as a teacher
func (i Identity) IsTeacher() bool {
	return i.Role == RoleTeacher
}
