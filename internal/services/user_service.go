package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

// HistoryLimit is the number of sessions returned by GetHistory.
const HistoryLimit = 10

type userService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger) UserService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &userService{
		repo:   repo,
		cache:  cm,
		logger: logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.cache.User.CacheOrExecute(ctx, cache.UserProfileKey(userID), &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.User().GetByID(ctx, nil, userID)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, nil
}

func (s *userService) GetProgress(ctx context.Context, userID string) ([]*models.ProgressTracking, error) {
	var progress []*models.ProgressTracking
	err := s.cache.Progress.CacheOrExecute(ctx, cache.UserProgressKey(userID), &progress, cache.ProgressCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Progress().ListByUser(ctx, nil, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	if progress == nil {
		progress = []*models.ProgressTracking{}
	}
	return progress, nil
}

func (s *userService) GetHistory(ctx context.Context, userID string) ([]*models.AssessmentSession, error) {
	sessions, err := s.repo.Session().ListRecentByUser(ctx, nil, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if sessions == nil {
		sessions = []*models.AssessmentSession{}
	}
	return sessions, nil
}
