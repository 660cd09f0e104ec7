package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/repository"
)

type UserService interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, user *domain.User) error
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	user, err := s.repo.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user resolved",
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, user *domain.User) error {
	if !user.DefaultType.IsValid() {
		return domain.ErrInvalidDocumentType
	}
	if !user.DefaultTone.IsValid() {
		return domain.ErrInvalidTone
	}
	if !user.DefaultPreset.IsValid() {
		return domain.ErrInvalidPresetType
	}

	if err := s.repo.UpdatePreferences(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user preferences updated",
		zap.Int64("user_id", user.ID),
		zap.String("default_type", user.DefaultType.String()),
		zap.String("default_tone", user.DefaultTone.String()),
		zap.String("default_provider", user.DefaultProvider),
		zap.String("default_preset", user.DefaultPreset.String()),
	)

	return nil
}
