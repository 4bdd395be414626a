package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "Pending"
	SubmissionSubmitted SubmissionStatus = "Submitted"
	SubmissionOverdue   SubmissionStatus = "Overdue"
	SubmissionGraded    SubmissionStatus = "Graded"
)

type Grade string

const (
	GradePass Grade = "P"
	GradeFail Grade = "F"
	GradeNone Grade = "N"
)

// Gradable reports whether a submission in this status can receive a grade.
func (s SubmissionStatus) Gradable() bool {
	return s == SubmissionSubmitted || s == SubmissionOverdue
}

// Submission is a student's uploaded artifact for an assignment.
// There is at most one per (StudentID, AssignmentID).
type Submission struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID    primitive.ObjectID  `bson:"studentId" json:"studentId"`
	AssignmentID primitive.ObjectID  `bson:"assignmentId" json:"assignmentId"`
	CourseID     primitive.ObjectID  `bson:"courseId" json:"courseId"`
	Status       SubmissionStatus    `bson:"status" json:"status"`
	Grade        Grade               `bson:"grade" json:"grade"`
	Feedback     string              `bson:"feedback,omitempty" json:"feedback,omitempty"`
	File         []byte              `bson:"file,omitempty" json:"-"`    // inline storage backend
	FileKey      string              `bson:"fileKey,omitempty" json:"-"` // object storage backend
	FileName     string              `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileType     string              `bson:"fileType,omitempty" json:"fileType,omitempty"`
	FileSize     int64               `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
	SubmittedAt  *time.Time          `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	GradedAt     *time.Time          `bson:"gradedAt,omitempty" json:"gradedAt,omitempty"`
	GradedBy     *primitive.ObjectID `bson:"gradedBy,omitempty" json:"gradedBy,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HasFile reports whether any payload has been attached.
func (s *Submission) HasFile() bool {
	return len(s.File) > 0 || s.FileKey != ""
}
