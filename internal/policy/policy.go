// Package policy maps user roles to the capabilities they grant.
package policy

import "alcyxob/learnhub/internal/domain"

// Capability names an action class that a route or service may require.
type Capability string

const (
	ViewCourses       Capability = "courses:view"
	ManageCourses     Capability = "courses:manage"
	Enroll            Capability = "courses:enroll"
	ManageLessons     Capability = "lessons:manage"
	ManageAssignments Capability = "assignments:manage"
	Submit            Capability = "submissions:submit"
	Grade             Capability = "submissions:grade"
	ParticipateForum  Capability = "forum:participate"
	ModerateForum     Capability = "forum:moderate"
	SelectTheme       Capability = "themes:select"
	ManageThemes      Capability = "themes:manage"
	ManageUsers       Capability = "users:manage"
)

var common = []Capability{ViewCourses, ParticipateForum, SelectTheme}

var grants = map[domain.Role][]Capability{
	domain.RoleStudent: append([]Capability{Enroll, Submit}, common...),
	domain.RoleTeacher: append([]Capability{ManageCourses, ManageLessons, ManageAssignments, Grade}, common...),
	domain.RoleAdmin: append([]Capability{
		ManageCourses, ManageLessons, ManageAssignments, Grade, ModerateForum, ManageThemes, ManageUsers,
	}, common...),
}

// Allows reports whether role holds capability.
func Allows(role domain.Role, capability Capability) bool {
	for _, c := range grants[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of the capabilities granted to role.
func Capabilities(role domain.Role) []Capability {
	return append([]Capability(nil), grants[role]...)
}
