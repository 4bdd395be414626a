package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Webhook outcomes reported to metrics and to the provider.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeUpdated   = "updated"
	OutcomeDeleted   = "deleted"
	OutcomeIgnored   = "ignored"
)

type UserService interface {
	// Resolve returns the local user for a verified provider id.
	Resolve(ctx context.Context, externalID string) (*domain.User, error)
	HandleIdentityEvent(ctx context.Context, evt identity.WebhookEvent) (string, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
	ChangeRole(ctx context.Context, actor *domain.User, userID primitive.ObjectID, role domain.Role) (*domain.User, error)
}

type userService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	tx      repository.Transactor
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewUserService(repos repository.Repositories, m *metrics.Metrics, log *zap.Logger) UserService {
	return &userService{
		users:   repos.Users,
		courses: repos.Courses,
		tx:      repos.Tx,
		metrics: m,
		log:     log.Named("users"),
	}
}

func (s *userService) Resolve(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, ErrUserNotProvisioned
	}
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, notFound(err, ErrUserNotProvisioned)
	}
	return user, nil
}

func (s *userService) HandleIdentityEvent(ctx context.Context, evt identity.WebhookEvent) (outcome string, err error) {
	defer func() {
		label := outcome
		if err != nil {
			label = "error"
		}
		s.metrics.IdentityWebhooks.WithLabelValues(evt.Type, label).Inc()
	}()

	switch evt.Type {
	case identity.EventUserCreated, identity.EventUserUpdated, identity.EventUserDeleted:
		if evt.Data.ID == "" {
			return "", validationf("event data is missing the user id")
		}
	}

	switch evt.Type {
	case identity.EventUserCreated:
		return s.provision(ctx, evt.Data)
	case identity.EventUserUpdated:
		return s.sync(ctx, evt.Data)
	case identity.EventUserDeleted:
		return s.remove(ctx, evt.Data.ID)
	default:
		s.log.Debug("ignoring identity event", zap.String("type", evt.Type))
		return OutcomeIgnored, nil
	}
}

func (s *userService) provision(ctx context.Context, data identity.WebhookUser) (string, error) {
	if _, err := s.users.GetByExternalID(ctx, data.ID); err == nil {
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	email := data.PrimaryEmail()
	if email == "" {
		return "", validationf("event data has no email address")
	}
	role := data.PublicMetadata.Role
	if !role.Valid() {
		role = domain.RoleStudent
	}

	user := &domain.User{
		ExternalID: data.ID,
		Name:       data.FullName(),
		Email:      email,
		Role:       role,
	}
	if user.Name == "" {
		user.Name = email
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// a concurrent delivery of the same event won the insert
			if _, lookupErr := s.users.GetByExternalID(ctx, data.ID); lookupErr == nil {
				return OutcomeDuplicate, nil
			}
			return "", newError(KindConflict, "a user with this email already exists")
		}
		return "", err
	}
	s.log.Info("user provisioned", zap.String("externalId", data.ID), zap.String("role", string(role)))
	return OutcomeCreated, nil
}

func (s *userService) sync(ctx context.Context, data identity.WebhookUser) (string, error) {
	user, err := s.users.GetByExternalID(ctx, data.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// updates may arrive before the create event
		return s.provision(ctx, data)
	}
	if err != nil {
		return "", err
	}

	name, email := data.FullName(), data.PrimaryEmail()
	if name == "" {
		name = user.Name
	}
	if email == "" {
		email = user.Email
	}
	if err := s.users.UpdateProfile(ctx, user.ID, name, email); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", newError(KindConflict, "a user with this email already exists")
		}
		return "", err
	}
	if role := data.PublicMetadata.Role; role.Valid() && role != user.Role {
		if err := s.users.SetRole(ctx, user.ID, role); err != nil {
			return "", err
		}
	}
	return OutcomeUpdated, nil
}

func (s *userService) remove(ctx context.Context, externalID string) (string, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, courseID := range user.EnrolledCourseIDs {
			if err := s.courses.RemoveStudent(ctx, courseID, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		return s.users.Delete(ctx, user.ID)
	})
	if err != nil {
		return "", err
	}
	s.log.Info("user removed", zap.String("externalId", externalID))
	return OutcomeDeleted, nil
}

func (s *userService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, validationf("unknown role %q", role)
	}
	return s.users.List(ctx, repository.UserFilter{Role: role})
}

func (s *userService) ChangeRole(ctx context.Context, actor *domain.User, userID primitive.ObjectID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, validationf("unknown role %q", role)
	}
	if actor.ID == userID && role != domain.RoleAdmin {
		return nil, forbiddenf("admins cannot remove their own admin role")
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	s.log.Info("role changed",
		zap.String("userId", userID.Hex()),
		zap.String("role", string(role)),
		zap.String("by", actor.ID.Hex()))
	return user, nil
}
