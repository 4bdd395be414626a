package memory

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type courseRepository struct {
	store *Store
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error) {
	if course.CourseID == "" || course.Title == "" {
		return primitive.NilObjectID, errors.New("course requires courseId and title")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := first(r.store, coursesTable, func(c *domain.Course) bool { return c.CourseID == course.CourseID }); err == nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}

	course.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = domain.CourseActive
	}
	if course.LessonIDs == nil {
		course.LessonIDs = []primitive.ObjectID{}
	}
	if course.AssignmentIDs == nil {
		course.AssignmentIDs = []primitive.ObjectID{}
	}
	if course.EnrolledStudentIDs == nil {
		course.EnrolledStudentIDs = []primitive.ObjectID{}
	}
	return course.ID, save(ctx, r.store, coursesTable, course.ID, course)
}

func (r *courseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Course](r.store, coursesTable, id)
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return first(r.store, coursesTable, func(c *domain.Course) bool { return c.CourseID == code })
}

func (r *courseRepository) List(ctx context.Context, f repository.CourseFilter) ([]domain.Course, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	courses, err := scan(r.store, coursesTable, func(c *domain.Course) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.DirectorID != nil && !c.IsDirectedBy(*f.DirectorID) {
			return false
		}
		if f.IDs != nil && !containsID(f.IDs, c.ID) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CourseID < courses[j].CourseID })
	return courses, nil
}

func (r *courseRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.CourseStatus) error {
	return r.mutate(ctx, id, func(c *domain.Course) error {
		c.Status = status
		return nil
	})
}

func (r *courseRepository) SetDirector(ctx context.Context, id primitive.ObjectID, directorID primitive.ObjectID) error {
	return r.mutate(ctx, id, func(c *domain.Course) error {
		c.DirectorID = &directorID
		return nil
	})
}

func (r *courseRepository) AddStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		if containsID(c.EnrolledStudentIDs, studentID) {
			return repository.ErrDuplicate
		}
		c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, studentID)
		return nil
	})
}

func (r *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		if !containsID(c.EnrolledStudentIDs, studentID) {
			return repository.ErrNotFound
		}
		c.EnrolledStudentIDs = withoutID(c.EnrolledStudentIDs, studentID)
		return nil
	})
}

func (r *courseRepository) AddLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		if !containsID(c.LessonIDs, lessonID) {
			c.LessonIDs = append(c.LessonIDs, lessonID)
		}
		return nil
	})
}

func (r *courseRepository) RemoveLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		c.LessonIDs = withoutID(c.LessonIDs, lessonID)
		return nil
	})
}

func (r *courseRepository) AddAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		if !containsID(c.AssignmentIDs, assignmentID) {
			c.AssignmentIDs = append(c.AssignmentIDs, assignmentID)
		}
		return nil
	})
}

func (r *courseRepository) RemoveAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	return r.mutate(ctx, courseID, func(c *domain.Course) error {
		c.AssignmentIDs = withoutID(c.AssignmentIDs, assignmentID)
		return nil
	})
}

func (r *courseRepository) mutate(ctx context.Context, id primitive.ObjectID, fn func(*domain.Course) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, err := load[domain.Course](r.store, coursesTable, id)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	return save(ctx, r.store, coursesTable, id, c)
}
