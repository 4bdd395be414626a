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

type submissionRepository struct {
	store *Store
}

func (r *submissionRepository) Upsert(ctx context.Context, sub *domain.Submission) error {
	if sub.StudentID == primitive.NilObjectID || sub.AssignmentID == primitive.NilObjectID {
		return errors.New("submission requires studentId and assignmentId")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	existing, err := r.byPair(sub.StudentID, sub.AssignmentID)
	switch {
	case err == nil:
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	case errors.Is(err, repository.ErrNotFound):
		sub.ID = primitive.NewObjectID()
		sub.CreatedAt = now
	default:
		return err
	}
	sub.UpdatedAt = now
	return save(ctx, r.store, submissionsTable, sub.ID, sub)
}

func (r *submissionRepository) EnsurePending(ctx context.Context, assignment *domain.Assignment, studentIDs []primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for _, studentID := range studentIDs {
		_, err := r.byPair(studentID, assignment.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		sub := &domain.Submission{
			ID:           primitive.NewObjectID(),
			StudentID:    studentID,
			AssignmentID: assignment.ID,
			CourseID:     assignment.CourseID,
			Status:       domain.SubmissionPending,
			Grade:        domain.GradeNone,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := save(ctx, r.store, submissionsTable, sub.ID, sub); err != nil {
			return err
		}
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Submission, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Submission](r.store, submissionsTable, id)
}

func (r *submissionRepository) GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID primitive.ObjectID) (*domain.Submission, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.byPair(studentID, assignmentID)
}

func (r *submissionRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Submission, error) {
	return r.list(func(s *domain.Submission) bool { return s.AssignmentID == assignmentID })
}

func (r *submissionRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Submission, error) {
	return r.list(func(s *domain.Submission) bool { return s.StudentID == studentID })
}

func (r *submissionRepository) Update(ctx context.Context, sub *domain.Submission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, err := load[domain.Submission](r.store, submissionsTable, sub.ID)
	if err != nil {
		return err
	}
	stored.Status = sub.Status
	stored.Grade = sub.Grade
	stored.Feedback = sub.Feedback
	stored.GradedAt = sub.GradedAt
	stored.GradedBy = sub.GradedBy
	stored.UpdatedAt = time.Now().UTC()
	sub.UpdatedAt = stored.UpdatedAt
	return save(ctx, r.store, submissionsTable, sub.ID, stored)
}

func (r *submissionRepository) DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	subs, err := scan(r.store, submissionsTable, func(s *domain.Submission) bool { return s.AssignmentID == assignmentID })
	if err != nil {
		return 0, err
	}
	for _, s := range subs {
		if err := remove(ctx, r.store, submissionsTable, s.ID); err != nil {
			return 0, err
		}
	}
	return int64(len(subs)), nil
}

func (r *submissionRepository) byPair(studentID, assignmentID primitive.ObjectID) (*domain.Submission, error) {
	return first(r.store, submissionsTable, func(s *domain.Submission) bool {
		return s.StudentID == studentID && s.AssignmentID == assignmentID
	})
}

// list mirrors the Mongo projection: file bytes are not returned.
func (r *submissionRepository) list(keep func(*domain.Submission) bool) ([]domain.Submission, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	subs, err := scan(r.store, submissionsTable, keep)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].File = nil
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].UpdatedAt.After(subs[j].UpdatedAt) })
	return subs, nil
}
