package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alcyxob/learnhub/internal/domain"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		role domain.Role
		cap  Capability
		want bool
	}{
		{domain.RoleStudent, Enroll, true},
		{domain.RoleStudent, Submit, true},
		{domain.RoleStudent, Grade, false},
		{domain.RoleStudent, ManageCourses, false},
		{domain.RoleTeacher, Grade, true},
		{domain.RoleTeacher, Enroll, false},
		{domain.RoleTeacher, ManageThemes, false},
		{domain.RoleTeacher, ModerateForum, false},
		{domain.RoleAdmin, ModerateForum, true},
		{domain.RoleAdmin, ManageUsers, true},
		{domain.RoleAdmin, ManageThemes, true},
		{domain.RoleAdmin, Submit, false},
		{domain.Role("guest"), ViewCourses, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.role, tt.cap))
		})
	}
}

func TestEveryRoleParticipatesInForum(t *testing.T) {
	for _, r := range []domain.Role{domain.RoleStudent, domain.RoleTeacher, domain.RoleAdmin} {
		assert.True(t, Allows(r, ParticipateForum), r)
		assert.True(t, Allows(r, SelectTheme), r)
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	caps := Capabilities(domain.RoleStudent)
	caps[0] = ManageUsers
	assert.False(t, Allows(domain.RoleStudent, ManageUsers))
}
