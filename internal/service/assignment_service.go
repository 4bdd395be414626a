package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/storage"
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AssignmentInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Status      domain.AssignmentStatus
}

type AssignmentService interface {
	// CreateAssignment also opens a Pending submission for every enrolled student.
	CreateAssignment(ctx context.Context, actor *domain.User, courseID primitive.ObjectID, in AssignmentInput) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, courseID primitive.ObjectID) ([]domain.Assignment, error)
	GetAssignment(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	SetAssignmentStatus(ctx context.Context, actor *domain.User, id primitive.ObjectID, status domain.AssignmentStatus) (*domain.Assignment, error)
	// DeleteAssignment removes the assignment together with its submissions.
	DeleteAssignment(ctx context.Context, actor *domain.User, id primitive.ObjectID) error
}

type assignmentService struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	tx          repository.Transactor
	files       storage.FileStorage // nil when submissions are stored inline
	log         *zap.Logger
	now         func() time.Time
}

func NewAssignmentService(repos repository.Repositories, files storage.FileStorage, log *zap.Logger) AssignmentService {
	return &assignmentService{
		courses:     repos.Courses,
		assignments: repos.Assignments,
		submissions: repos.Submissions,
		tx:          repos.Tx,
		files:       files,
		log:         log.Named("assignments"),
		now:         time.Now,
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, actor *domain.User, courseID primitive.ObjectID, in AssignmentInput) (*domain.Assignment, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, validationf("title is required")
	}
	if in.DueDate.IsZero() || !in.DueDate.After(s.now()) {
		return nil, validationf("due date must be in the future")
	}
	if in.Status == "" {
		in.Status = domain.AssignmentPublished
	}
	if !in.Status.Valid() {
		return nil, validationf("unknown assignment status %q", in.Status)
	}
	course, err := managedCourse(ctx, s.courses, actor, courseID)
	if err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		CourseID:    courseID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate.UTC(),
		Status:      in.Status,
		CreatedBy:   actor.ID,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.assignments.Create(ctx, assignment)
		if err != nil {
			return err
		}
		assignment.ID = id
		if err := s.courses.AddAssignment(ctx, courseID, id); err != nil {
			return notFound(err, ErrCourseNotFound)
		}
		return s.submissions.EnsurePending(ctx, assignment, course.EnrolledStudentIDs)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("assignment created",
		zap.String("assignmentId", assignment.ID.Hex()),
		zap.String("courseId", course.CourseID),
		zap.Int("students", len(course.EnrolledStudentIDs)))
	return assignment, nil
}

func (s *assignmentService) ListAssignments(ctx context.Context, courseID primitive.ObjectID) ([]domain.Assignment, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return s.assignments.GetByCourseID(ctx, courseID)
}

func (s *assignmentService) GetAssignment(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	return assignment, nil
}

func (s *assignmentService) SetAssignmentStatus(ctx context.Context, actor *domain.User, id primitive.ObjectID, status domain.AssignmentStatus) (*domain.Assignment, error) {
	if !status.Valid() {
		return nil, validationf("unknown assignment status %q", status)
	}
	assignment, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courses, actor, assignment.CourseID); err != nil {
		return nil, err
	}
	if err := s.assignments.SetStatus(ctx, id, status); err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	assignment.Status = status
	return assignment, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, actor *domain.User, id primitive.ObjectID) error {
	assignment, err := s.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if _, err := managedCourse(ctx, s.courses, actor, assignment.CourseID); err != nil {
		return err
	}
	subs, err := s.submissions.GetByAssignmentID(ctx, id)
	if err != nil {
		return err
	}

	var removed int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.submissions.DeleteByAssignmentID(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		if err := s.courses.RemoveAssignment(ctx, assignment.CourseID, id); err != nil {
			return notFound(err, ErrCourseNotFound)
		}
		return notFound(s.assignments.Delete(ctx, id), ErrAssignmentNotFound)
	})
	if err != nil {
		return err
	}

	// objects are removed once the records are gone; a failure only leaks storage
	if s.files != nil {
		for _, sub := range subs {
			if sub.FileKey == "" {
				continue
			}
			if err := s.files.Delete(ctx, sub.FileKey); err != nil {
				s.log.Warn("failed to delete submission object", zap.String("key", sub.FileKey), zap.Error(err))
			}
		}
	}
	s.log.Info("assignment deleted", zap.String("assignmentId", id.Hex()), zap.Int64("submissions", removed))
	return nil
}
