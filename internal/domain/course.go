package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseInactive CourseStatus = "inactive"
)

// Course groups lessons and assignments under a human readable code such as CSC1010.
type Course struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CourseID           string               `bson:"courseId" json:"courseId"` // unique human code
	Title              string               `bson:"title" json:"title"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	Credits            int                  `bson:"credits" json:"credits"`
	Status             CourseStatus         `bson:"status" json:"status"`
	LessonIDs          []primitive.ObjectID `bson:"lessonIds" json:"lessonIds"`
	AssignmentIDs      []primitive.ObjectID `bson:"assignmentIds" json:"assignmentIds"`
	EnrolledStudentIDs []primitive.ObjectID `bson:"enrolledStudentIds" json:"enrolledStudentIds"`
	DirectorID         *primitive.ObjectID  `bson:"directorId,omitempty" json:"directorId,omitempty"` // course director (teacher)
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (c *Course) IsActive() bool {
	return c.Status == CourseActive
}

func (c *Course) HasStudent(studentID primitive.ObjectID) bool {
	return containsID(c.EnrolledStudentIDs, studentID)
}

// IsDirectedBy reports whether the user is the teacher of record.
func (c *Course) IsDirectedBy(userID primitive.ObjectID) bool {
	return c.DirectorID != nil && *c.DirectorID == userID
}
