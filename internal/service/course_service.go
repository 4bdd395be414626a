package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CourseCodePattern matches human course codes such as CSC1010.
var CourseCodePattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3,4}$`)

type CreateCourseInput struct {
	CourseID    string
	Title       string
	Description string
	Credits     int
}

type CourseService interface {
	CreateCourse(ctx context.Context, actor *domain.User, in CreateCourseInput) (*domain.Course, error)
	ListCourses(ctx context.Context, status domain.CourseStatus) ([]domain.Course, error)
	GetCourse(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*domain.Course, error)
	SetStatus(ctx context.Context, actor *domain.User, id primitive.ObjectID, status domain.CourseStatus) (*domain.Course, error)
	AssignDirector(ctx context.Context, actor *domain.User, id, directorID primitive.ObjectID) (*domain.Course, error)
	Enroll(ctx context.Context, student *domain.User, id primitive.ObjectID) (*domain.Course, error)
	Unenroll(ctx context.Context, student *domain.User, id primitive.ObjectID) error
	// MyCourses lists enrolled courses for students and directed courses for staff.
	MyCourses(ctx context.Context, user *domain.User) ([]domain.Course, error)
	ListStudents(ctx context.Context, actor *domain.User, id primitive.ObjectID) ([]domain.User, error)
}

type courseService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	tx          repository.Transactor
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewCourseService(repos repository.Repositories, m *metrics.Metrics, log *zap.Logger) CourseService {
	return &courseService{
		users:       repos.Users,
		courses:     repos.Courses,
		assignments: repos.Assignments,
		submissions: repos.Submissions,
		tx:          repos.Tx,
		metrics:     m,
		log:         log.Named("courses"),
	}
}

// canManage reports whether actor may change the course and its content.
func canManage(actor *domain.User, course *domain.Course) bool {
	return actor.IsAdmin() || course.IsDirectedBy(actor.ID)
}

func (s *courseService) CreateCourse(ctx context.Context, actor *domain.User, in CreateCourseInput) (*domain.Course, error) {
	in.CourseID = strings.ToUpper(strings.TrimSpace(in.CourseID))
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, validationf("title is required")
	}
	if !CourseCodePattern.MatchString(in.CourseID) {
		return nil, validationf("course code %q must look like CSC1010", in.CourseID)
	}
	if in.Credits < 1 || in.Credits > 12 {
		return nil, validationf("credits must be between 1 and 12")
	}

	course := &domain.Course{
		CourseID:    in.CourseID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Credits:     in.Credits,
		Status:      domain.CourseActive,
	}
	if actor.IsTeacher() {
		director := actor.ID
		course.DirectorID = &director
	}

	id, err := s.courses.Create(ctx, course)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCourseExists
		}
		return nil, err
	}
	course.ID = id
	s.log.Info("course created", zap.String("courseId", course.CourseID), zap.String("by", actor.ID.Hex()))
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, status domain.CourseStatus) ([]domain.Course, error) {
	if status != "" && status != domain.CourseActive && status != domain.CourseInactive {
		return nil, validationf("unknown course status %q", status)
	}
	return s.courses.List(ctx, repository.CourseFilter{Status: status})
}

func (s *courseService) GetCourse(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return course, nil
}

func (s *courseService) GetCourseByCode(ctx context.Context, code string) (*domain.Course, error) {
	course, err := s.courses.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return course, nil
}

func (s *courseService) SetStatus(ctx context.Context, actor *domain.User, id primitive.ObjectID, status domain.CourseStatus) (*domain.Course, error) {
	if status != domain.CourseActive && status != domain.CourseInactive {
		return nil, validationf("unknown course status %q", status)
	}
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, course) {
		return nil, ErrNotDirector
	}
	if err := s.courses.SetStatus(ctx, id, status); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	course.Status = status
	return course, nil
}

func (s *courseService) AssignDirector(ctx context.Context, actor *domain.User, id, directorID primitive.ObjectID) (*domain.Course, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenf("only an admin can assign a course director")
	}
	director, err := s.users.GetByID(ctx, directorID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !director.IsTeacher() {
		return nil, validationf("course director must be a teacher")
	}
	if err := s.courses.SetDirector(ctx, id, directorID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return s.GetCourse(ctx, id)
}

// Enroll adds the student on both sides of the enrollment and opens Pending
// submissions for the course's existing assignments, all in one transaction.
func (s *courseService) Enroll(ctx context.Context, student *domain.User, id primitive.ObjectID) (*domain.Course, error) {
	if !student.IsStudent() {
		return nil, forbiddenf("only students can enroll")
	}
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsActive() {
		return nil, ErrCourseInactive
	}
	if course.HasStudent(student.ID) {
		return nil, ErrAlreadyEnrolled
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.AddStudent(ctx, course.ID, student.ID); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyEnrolled
			}
			return notFound(err, ErrCourseNotFound)
		}
		if err := s.users.AddEnrolledCourse(ctx, student.ID, course.ID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		assignments, err := s.assignments.GetByCourseID(ctx, course.ID)
		if err != nil {
			return err
		}
		for i := range assignments {
			if err := s.submissions.EnsurePending(ctx, &assignments[i], []primitive.ObjectID{student.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Enrollments.WithLabelValues("enroll").Inc()
	course.EnrolledStudentIDs = append(course.EnrolledStudentIDs, student.ID)
	return course, nil
}

func (s *courseService) Unenroll(ctx context.Context, student *domain.User, id primitive.ObjectID) error {
	if !student.IsStudent() {
		return forbiddenf("only students can unenroll")
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.courses.GetByID(ctx, id); err != nil {
			return notFound(err, ErrCourseNotFound)
		}
		if err := s.courses.RemoveStudent(ctx, id, student.ID); err != nil {
			return notFound(err, ErrNotEnrolled)
		}
		return notFound(s.users.RemoveEnrolledCourse(ctx, student.ID, id), ErrUserNotFound)
	})
	if err != nil {
		return err
	}
	s.metrics.Enrollments.WithLabelValues("unenroll").Inc()
	return nil
}

func (s *courseService) MyCourses(ctx context.Context, user *domain.User) ([]domain.Course, error) {
	if user.IsStudent() {
		if len(user.EnrolledCourseIDs) == 0 {
			return []domain.Course{}, nil
		}
		return s.courses.List(ctx, repository.CourseFilter{IDs: user.EnrolledCourseIDs})
	}
	if user.IsAdmin() {
		return s.courses.List(ctx, repository.CourseFilter{})
	}
	id := user.ID
	return s.courses.List(ctx, repository.CourseFilter{DirectorID: &id})
}

func (s *courseService) ListStudents(ctx context.Context, actor *domain.User, id primitive.ObjectID) ([]domain.User, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, course) {
		return nil, ErrNotDirector
	}
	students := make([]domain.User, 0, len(course.EnrolledStudentIDs))
	for _, studentID := range course.EnrolledStudentIDs {
		u, err := s.users.GetByID(ctx, studentID)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("enrolled student missing", zap.String("courseId", course.CourseID), zap.String("studentId", studentID.Hex()))
			continue
		}
		if err != nil {
			return nil, err
		}
		students = append(students, *u)
	}
	return students, nil
}
