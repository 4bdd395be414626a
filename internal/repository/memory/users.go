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

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.ExternalID == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, external id, and role are required")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clash, err := scan(r.store, usersTable, func(u *domain.User) bool {
		return u.Email == user.Email || u.ExternalID == user.ExternalID
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(clash) > 0 {
		return primitive.NilObjectID, repository.ErrDuplicate
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return user.ID, save(ctx, r.store, usersTable, user.ID, user)
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[domain.User](r.store, usersTable, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return first(r.store, usersTable, func(u *domain.User) bool { return u.Email == email })
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return first(r.store, usersTable, func(u *domain.User) bool { return u.ExternalID == externalID })
}

func (r *userRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users, err := scan(r.store, usersTable, func(u *domain.User) bool {
		return f.Role == "" || u.Role == f.Role
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error {
	return r.mutate(ctx, id, func(u *domain.User) error {
		u.Name = name
		u.Email = email
		return nil
	})
}

func (r *userRepository) SetRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error {
	return r.mutate(ctx, id, func(u *domain.User) error {
		u.Role = role
		return nil
	})
}

func (r *userRepository) SetTheme(ctx context.Context, id primitive.ObjectID, themeID primitive.ObjectID) error {
	return r.mutate(ctx, id, func(u *domain.User) error {
		u.ThemeID = &themeID
		return nil
	})
}

func (r *userRepository) ClearTheme(ctx context.Context, themeID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users, err := scan(r.store, usersTable, func(u *domain.User) bool { return u.ThemeID != nil && *u.ThemeID == themeID })
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for i := range users {
		users[i].ThemeID = nil
		users[i].UpdatedAt = now
		if err := save(ctx, r.store, usersTable, users[i].ID, &users[i]); err != nil {
			return 0, err
		}
	}
	return int64(len(users)), nil
}

func (r *userRepository) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	return r.mutate(ctx, userID, func(u *domain.User) error {
		if u.Role != domain.RoleStudent {
			return repository.ErrNotFound
		}
		if !containsID(u.EnrolledCourseIDs, courseID) {
			u.EnrolledCourseIDs = append(u.EnrolledCourseIDs, courseID)
		}
		return nil
	})
}

func (r *userRepository) RemoveEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	return r.mutate(ctx, userID, func(u *domain.User) error {
		u.EnrolledCourseIDs = withoutID(u.EnrolledCourseIDs, courseID)
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return remove(ctx, r.store, usersTable, id)
}

func (r *userRepository) mutate(ctx context.Context, id primitive.ObjectID, fn func(*domain.User) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, err := load[domain.User](r.store, usersTable, id)
	if err != nil {
		return err
	}
	if err := fn(u); err != nil {
		return err
	}
	if u.Email != "" {
		clash, err := scan(r.store, usersTable, func(o *domain.User) bool { return o.ID != u.ID && o.Email == u.Email })
		if err != nil {
			return err
		}
		if len(clash) > 0 {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return save(ctx, r.store, usersTable, id, u)
}
