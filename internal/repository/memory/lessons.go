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

type lessonRepository struct {
	store *Store
}

func (r *lessonRepository) Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error) {
	if lesson.CourseID == primitive.NilObjectID || lesson.UnitCode == "" {
		return primitive.NilObjectID, errors.New("lesson requires courseId and unitCode")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkUnitCode(primitive.NilObjectID, lesson.UnitCode); err != nil {
		return primitive.NilObjectID, err
	}
	lesson.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	if lesson.Status == "" {
		lesson.Status = domain.LessonDraft
	}
	return lesson.ID, save(ctx, r.store, lessonsTable, lesson.ID, lesson)
}

func (r *lessonRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Lesson](r.store, lessonsTable, id)
}

func (r *lessonRepository) GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	lessons, err := scan(r.store, lessonsTable, func(l *domain.Lesson) bool { return l.CourseID == courseID })
	if err != nil {
		return nil, err
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].UnitCode < lessons[j].UnitCode })
	return lessons, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, err := load[domain.Lesson](r.store, lessonsTable, lesson.ID)
	if err != nil {
		return err
	}
	if err := r.checkUnitCode(lesson.ID, lesson.UnitCode); err != nil {
		return err
	}
	lesson.CourseID = stored.CourseID
	lesson.DesignerID = stored.DesignerID
	lesson.CreatedAt = stored.CreatedAt
	lesson.UpdatedAt = time.Now().UTC()
	return save(ctx, r.store, lessonsTable, lesson.ID, lesson)
}

func (r *lessonRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return remove(ctx, r.store, lessonsTable, id)
}

func (r *lessonRepository) checkUnitCode(self primitive.ObjectID, code string) error {
	clash, err := scan(r.store, lessonsTable, func(l *domain.Lesson) bool { return l.ID != self && l.UnitCode == code })
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return repository.ErrDuplicate
	}
	return nil
}
