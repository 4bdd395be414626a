package memory

import (
	"alcyxob/learnhub/internal/domain"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assignmentRepository struct {
	store *Store
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.CourseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires courseId")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.AssignmentPublished
	}
	return assignment.ID, save(ctx, r.store, assignmentsTable, assignment.ID, assignment)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Assignment](r.store, assignmentsTable, id)
}

func (r *assignmentRepository) GetByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list, err := scan(r.store, assignmentsTable, func(a *domain.Assignment) bool { return a.CourseID == courseID })
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DueDate.Before(list[j].DueDate) })
	return list, nil
}

func (r *assignmentRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, err := load[domain.Assignment](r.store, assignmentsTable, id)
	if err != nil {
		return err
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return save(ctx, r.store, assignmentsTable, id, a)
}

func (r *assignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return remove(ctx, r.store, assignmentsTable, id)
}
