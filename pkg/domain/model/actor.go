package model

import (
	"slices"

	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// Actor is the authenticated school-community user on whose behalf a
// request runs. Role, permission grants, and student links are facts
// supplied by the external authorization service.
type Actor struct {
	ID          string
	Name        string
	DistrictID  string
	Role        types.Role
	Permissions []types.Permission
	StudentIDs  []string // self for students, linked children for parents
}

// Can reports whether the actor holds the given permission.
// PermissionAdmin bypasses all checks.
func (a *Actor) Can(p types.Permission) bool {
	if slices.Contains(a.Permissions, types.PermissionAdmin) {
		return true
	}
	return slices.Contains(a.Permissions, p)
}

// CanAccessStudent reports whether the actor's role and relationships
// authorize access to education records of the given student.
// Students may access only themselves, parents only linked children;
// teachers, staff and admins have broader access within their district.
func (a *Actor) CanAccessStudent(studentID string) bool {
	switch a.Role {
	case types.RoleStudent, types.RoleParent:
		return slices.Contains(a.StudentIDs, studentID)
	case types.RoleTeacher, types.RoleStaff, types.RoleAdmin:
		return true
	default:
		return false
	}
}
