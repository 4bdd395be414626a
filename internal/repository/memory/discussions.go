package memory

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type discussionRepository struct {
	store *Store
	table string
}

func (r *discussionRepository) Create(ctx context.Context, d *domain.Discussion) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Version = 1
	if d.Reactions == nil {
		d.Reactions = domain.NewReactions()
	}
	if d.Comments == nil {
		d.Comments = []domain.Comment{}
	}
	return d.ID, save(ctx, r.store, r.table, d.ID, d)
}

func (r *discussionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Discussion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Discussion](r.store, r.table, id)
}

func (r *discussionRepository) List(ctx context.Context, f repository.DiscussionFilter) ([]domain.Discussion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list, err := scan(r.store, r.table, func(d *domain.Discussion) bool {
		if f.CourseID != nil && (d.CourseID == nil || *d.CourseID != *f.CourseID) {
			return false
		}
		if f.Tag != "" && !hasTag(d.Tags, f.Tag) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *discussionRepository) Replace(ctx context.Context, d *domain.Discussion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, err := load[domain.Discussion](r.store, r.table, d.ID)
	if err != nil {
		return err
	}
	if stored.Version != d.Version {
		return repository.ErrVersionConflict
	}
	next := *d
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	if err := save(ctx, r.store, r.table, d.ID, &next); err != nil {
		return err
	}
	*d = next
	return nil
}

func (r *discussionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return remove(ctx, r.store, r.table, id)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
