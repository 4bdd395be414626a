package memory

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type themeRepository struct {
	store *Store
}

func (r *themeRepository) Create(ctx context.Context, theme *domain.Theme) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, err := first(r.store, themesTable, func(t *domain.Theme) bool { return t.HexColor == theme.HexColor }); err == nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	theme.ID = primitive.NewObjectID()
	theme.CreatedAt = time.Now().UTC()
	return theme.ID, save(ctx, r.store, themesTable, theme.ID, theme)
}

func (r *themeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Theme, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.Theme](r.store, themesTable, id)
}

func (r *themeRepository) List(ctx context.Context) ([]domain.Theme, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	themes, err := scan[domain.Theme](r.store, themesTable, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].HexColor < themes[j].HexColor })
	return themes, nil
}

func (r *themeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return remove(ctx, r.store, themesTable, id)
}
