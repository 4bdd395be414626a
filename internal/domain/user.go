package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is the local record of an identity managed by the external provider.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"externalId" json:"externalId"` // identity provider id
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"` // unique
	Role       Role               `bson:"role" json:"role"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Student-specific ---
	StudentProfileID  *primitive.ObjectID  `bson:"studentProfileId,omitempty" json:"studentProfileId,omitempty"`
	EnrolledCourseIDs []primitive.ObjectID `bson:"enrolledCourseIds,omitempty" json:"enrolledCourseIds,omitempty"`

	ThemeID *primitive.ObjectID `bson:"themeId,omitempty" json:"themeId,omitempty"`
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEnrolledIn reports whether the course id is on the user's side of the enrollment.
func (u *User) IsEnrolledIn(courseID primitive.ObjectID) bool {
	return containsID(u.EnrolledCourseIDs, courseID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
