package types

import "fmt"

// Role represents the role of a school-community user
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleStudent,
		RoleParent,
		RoleTeacher,
		RoleStaff,
		RoleAdmin,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleTeacher, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// Permission represents a named capability grant for a user
type Permission string

const (
	// PermissionAdmin bypasses all permission checks
	PermissionAdmin Permission = "admin:all"

	PermissionDocumentsRead Permission = "documents:read"
	PermissionStudentsRead  Permission = "students:read"
	PermissionEscalate      Permission = "escalation:create"
	PermissionSchoolInfo    Permission = "school:info"
)

// String returns the string representation of the permission
func (p Permission) String() string {
	return string(p)
}
