package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LessonStatus string

const (
	LessonDraft    LessonStatus = "draft"
	LessonActive   LessonStatus = "active"
	LessonArchived LessonStatus = "archived"
)

func (s LessonStatus) Valid() bool {
	return s == LessonDraft || s == LessonActive || s == LessonArchived
}

// Lesson is a unit of teaching inside a course.
type Lesson struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID    primitive.ObjectID `bson:"courseId" json:"courseId"`
	UnitCode    string             `bson:"unitCode" json:"unitCode"` // unique
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Objectives  []string           `bson:"objectives,omitempty" json:"objectives,omitempty"`
	ReadingList []string           `bson:"readingList,omitempty" json:"readingList,omitempty"`
	DesignerID  primitive.ObjectID `bson:"designerId" json:"designerId"`
	Status      LessonStatus       `bson:"status" json:"status"`
	Credits     int                `bson:"credits" json:"credits"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
