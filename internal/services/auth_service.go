package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/medihack/competency-service/internal/auth"
	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/config"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
	"github.com/medihack/competency-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenManager
	cache     *cache.CacheManager
	cfg       config.AuthConfig
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenManager, cm *cache.CacheManager, cfg config.AuthConfig, logger *slog.Logger, validator *validator.Validator) AuthService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &authService{
		repo:      repo,
		tokens:    tokens,
		cache:     cm,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	s.logger.Info("Registering user", "username", req.Username)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	profile := resolveProfile(req.ExperienceYears, req.Level, req.StandardScore)
	user := &models.User{
		Username:        req.Username,
		Email:           req.Email,
		Department:      req.Department,
		PasswordHash:    hash,
		ExperienceYears: req.ExperienceYears,
		Level:           profile.Level,
		StandardScore:   profile.StandardScore,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		// lost a race with a concurrent registration
		if repositories.IsDuplicateError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return s.issueUserToken(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, req.Username)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now()
	if user == nil {
		user, err = s.createOnLogin(ctx, req, now)
		if err != nil {
			return nil, err
		}
		return s.issueUserToken(user)
	}

	if req.Password != "" && !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Login rejected", "username", req.Username)
		return nil, ErrInvalidCredentials
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
			return err
		}
		if req.ExperienceYears == nil {
			return nil
		}
		profile := resolveProfile(*req.ExperienceYears, req.Level, req.StandardScore)
		return tx.User().UpdateProfile(ctx, nil, user.ID, repositories.ProfileUpdate{
			ExperienceYears: *req.ExperienceYears,
			Level:           profile.Level,
			StandardScore:   profile.StandardScore,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user on login: %w", err)
	}
	cache.InvalidateUserCache(ctx, s.cache, user.ID)

	user.LastLogin = &now
	if req.ExperienceYears != nil {
		profile := resolveProfile(*req.ExperienceYears, req.Level, req.StandardScore)
		user.ExperienceYears = *req.ExperienceYears
		user.Level = profile.Level
		user.StandardScore = profile.StandardScore
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.issueUserToken(user)
}

func (s *authService) createOnLogin(ctx context.Context, req *LoginRequest, now time.Time) (*models.User, error) {
	password := req.Password
	if password == "" {
		password = s.cfg.DefaultPassword
	}
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	experience := 0
	if req.ExperienceYears != nil {
		experience = *req.ExperienceYears
	}
	profile := resolveProfile(experience, req.Level, req.StandardScore)

	user := &models.User{
		Username:        req.Username,
		PasswordHash:    hash,
		ExperienceYears: experience,
		Level:           profile.Level,
		StandardScore:   profile.StandardScore,
		LastLogin:       &now,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created on first login", "user_id", user.ID)
	return user, nil
}

func (s *authService) AdminLogin(ctx context.Context, req *AdminLoginRequest) (*AdminAuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		s.logger.Warn("Admin login rejected", "username", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue("", models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AdminAuthResponse{
		Token: token,
		Admin: AdminInfo{Username: s.cfg.AdminUsername, Role: models.RoleAdmin},
	}, nil
}

func (s *authService) issueUserToken(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: user.Summary()}, nil
}

// resolveProfile derives level and standard score from experience unless the
// caller supplied them.
func resolveProfile(experienceYears int, level *int, standardScore *float64) models.LevelData {
	profile := models.GetLevelData(experienceYears)
	if level != nil {
		profile.Level = *level
	}
	if standardScore != nil {
		profile.StandardScore = *standardScore
	}
	return profile
}
