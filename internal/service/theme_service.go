package service

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validate applies the same hexcolor rule the HTTP binding uses.
var validate = validator.New()

type ThemeService interface {
	CreateTheme(ctx context.Context, hexColor, description string) (*domain.Theme, error)
	ListThemes(ctx context.Context) ([]domain.Theme, error)
	DeleteTheme(ctx context.Context, id primitive.ObjectID) error
	SelectTheme(ctx context.Context, user *domain.User, themeID primitive.ObjectID) (*domain.User, error)
}

type themeService struct {
	themes repository.ThemeRepository
	users  repository.UserRepository
	tx     repository.Transactor
}

func NewThemeService(repos repository.Repositories) ThemeService {
	return &themeService{themes: repos.Themes, users: repos.Users, tx: repos.Tx}
}

func (s *themeService) CreateTheme(ctx context.Context, hexColor, description string) (*domain.Theme, error) {
	hexColor = strings.ToUpper(strings.TrimSpace(hexColor))
	if validate.Var(hexColor, "required,hexcolor") != nil {
		return nil, validationf("%q is not a hex color", hexColor)
	}
	theme := &domain.Theme{HexColor: hexColor, Description: strings.TrimSpace(description)}
	id, err := s.themes.Create(ctx, theme)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrThemeExists
		}
		return nil, err
	}
	theme.ID = id
	return theme, nil
}

func (s *themeService) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	return s.themes.List(ctx)
}

// DeleteTheme removes the theme and clears it from every user that selected it.
func (s *themeService) DeleteTheme(ctx context.Context, id primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.themes.Delete(ctx, id); err != nil {
			return notFound(err, ErrThemeNotFound)
		}
		_, err := s.users.ClearTheme(ctx, id)
		return err
	})
}

func (s *themeService) SelectTheme(ctx context.Context, user *domain.User, themeID primitive.ObjectID) (*domain.User, error) {
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		return nil, notFound(err, ErrThemeNotFound)
	}
	if err := s.users.SetTheme(ctx, user.ID, themeID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.ThemeID = &themeID
	return user, nil
}
