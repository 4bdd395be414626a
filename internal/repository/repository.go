package repository

import (
	"alcyxob/learnhub/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicate       = RepositoryError("duplicate key")
	ErrVersionConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or aborts together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	Role domain.Role
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error
	SetRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error
	SetTheme(ctx context.Context, id primitive.ObjectID, themeID primitive.ObjectID) error
	// ClearTheme unsets themeID on every user that selected it and returns how many changed.
	ClearTheme(ctx context.Context, themeID primitive.ObjectID) (int64, error)
	AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error
	RemoveEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CourseFilter narrows course listings. Zero values match everything.
type CourseFilter struct {
	Status     domain.CourseStatus
	DirectorID *primitive.ObjectID
	IDs        []primitive.ObjectID
}

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	GetByCode(ctx context.Context, code string) (*domain.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.CourseStatus) error
	SetDirector(ctx context.Context, id primitive.ObjectID, directorID primitive.ObjectID) error
	// AddStudent is a no-op returning ErrDuplicate when the student is already enrolled.
	AddStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error
	RemoveStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error
	AddLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error
	RemoveLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error
	AddAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error
	RemoveAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error)
	GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error)
	Update(ctx context.Context, lesson *domain.Lesson) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Assignment, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type SubmissionRepository interface {
	// Upsert stores the submission keyed by (StudentID, AssignmentID). An existing
	// record keeps its ID and CreatedAt; sub is updated with the stored values.
	Upsert(ctx context.Context, sub *domain.Submission) error
	// EnsurePending creates Pending records for students that have none yet.
	EnsurePending(ctx context.Context, assignment *domain.Assignment, studentIDs []primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Submission, error)
	GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID primitive.ObjectID) (*domain.Submission, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Submission, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Submission, error)
	Update(ctx context.Context, sub *domain.Submission) error
	DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (int64, error)
}

type ThemeRepository interface {
	Create(ctx context.Context, theme *domain.Theme) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Theme, error)
	List(ctx context.Context) ([]domain.Theme, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DiscussionFilter narrows discussion listings. Zero values match everything.
type DiscussionFilter struct {
	CourseID *primitive.ObjectID
	Tag      string
}

// DiscussionRepository stores one kind of discussion (threads or posts).
type DiscussionRepository interface {
	Create(ctx context.Context, d *domain.Discussion) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Discussion, error)
	List(ctx context.Context, filter DiscussionFilter) ([]domain.Discussion, error)
	// Replace writes d only if the stored version still equals d.Version, then
	// increments d.Version. A stale write returns ErrVersionConflict.
	Replace(ctx context.Context, d *domain.Discussion) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Repositories bundles every repository a backend provides.
type Repositories struct {
	Users       UserRepository
	Courses     CourseRepository
	Lessons     LessonRepository
	Assignments AssignmentRepository
	Submissions SubmissionRepository
	Themes      ThemeRepository
	Threads     DiscussionRepository
	Posts       DiscussionRepository
	Tx          Transactor
}
