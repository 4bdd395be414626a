package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LessonInput struct {
	UnitCode    string
	Title       string
	Description string
	Objectives  []string
	ReadingList []string
	Status      domain.LessonStatus
	Credits     int
}

func (in *LessonInput) normalize() error {
	in.UnitCode = strings.ToUpper(strings.TrimSpace(in.UnitCode))
	in.Title = strings.TrimSpace(in.Title)
	if in.UnitCode == "" || in.Title == "" {
		return validationf("unit code and title are required")
	}
	if in.Credits < 0 {
		return validationf("credits cannot be negative")
	}
	if in.Status == "" {
		in.Status = domain.LessonDraft
	}
	if !in.Status.Valid() {
		return validationf("unknown lesson status %q", in.Status)
	}
	return nil
}

type LessonService interface {
	CreateLesson(ctx context.Context, actor *domain.User, courseID primitive.ObjectID, in LessonInput) (*domain.Lesson, error)
	ListLessons(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error)
	GetLesson(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error)
	UpdateLesson(ctx context.Context, actor *domain.User, id primitive.ObjectID, in LessonInput) (*domain.Lesson, error)
	DeleteLesson(ctx context.Context, actor *domain.User, id primitive.ObjectID) error
}

type lessonService struct {
	courses repository.CourseRepository
	lessons repository.LessonRepository
	tx      repository.Transactor
	log     *zap.Logger
}

func NewLessonService(repos repository.Repositories, log *zap.Logger) LessonService {
	return &lessonService{
		courses: repos.Courses,
		lessons: repos.Lessons,
		tx:      repos.Tx,
		log:     log.Named("lessons"),
	}
}

// managedCourse loads the course and checks actor may change it.
func managedCourse(ctx context.Context, courses repository.CourseRepository, actor *domain.User, id primitive.ObjectID) (*domain.Course, error) {
	course, err := courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !canManage(actor, course) {
		return nil, ErrNotDirector
	}
	return course, nil
}

func (s *lessonService) CreateLesson(ctx context.Context, actor *domain.User, courseID primitive.ObjectID, in LessonInput) (*domain.Lesson, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}

	lesson := &domain.Lesson{
		CourseID:    courseID,
		UnitCode:    in.UnitCode,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Objectives:  in.Objectives,
		ReadingList: in.ReadingList,
		DesignerID:  actor.ID,
		Status:      in.Status,
		Credits:     in.Credits,
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.lessons.Create(ctx, lesson)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrLessonExists
			}
			return err
		}
		lesson.ID = id
		return notFound(s.courses.AddLesson(ctx, courseID, id), ErrCourseNotFound)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("lesson created", zap.String("unitCode", lesson.UnitCode), zap.String("courseId", courseID.Hex()))
	return lesson, nil
}

func (s *lessonService) ListLessons(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return s.lessons.GetByCourseID(ctx, courseID)
}

func (s *lessonService) GetLesson(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrLessonNotFound)
	}
	return lesson, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, actor *domain.User, id primitive.ObjectID, in LessonInput) (*domain.Lesson, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	lesson, err := s.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courses, actor, lesson.CourseID); err != nil {
		return nil, err
	}

	lesson.UnitCode = in.UnitCode
	lesson.Title = in.Title
	lesson.Description = strings.TrimSpace(in.Description)
	lesson.Objectives = in.Objectives
	lesson.ReadingList = in.ReadingList
	lesson.Status = in.Status
	lesson.Credits = in.Credits
	if err := s.lessons.Update(ctx, lesson); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLessonExists
		}
		return nil, notFound(err, ErrLessonNotFound)
	}
	return lesson, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, actor *domain.User, id primitive.ObjectID) error {
	lesson, err := s.GetLesson(ctx, id)
	if err != nil {
		return err
	}
	if _, err := managedCourse(ctx, s.courses, actor, lesson.CourseID); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.lessons.Delete(ctx, id); err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		return notFound(s.courses.RemoveLesson(ctx, lesson.CourseID, id), ErrCourseNotFound)
	})
}
