package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/medihack/competency-service/internal/auth"
	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/config"
	"github.com/medihack/competency-service/internal/events"
	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/repositories"
	"github.com/medihack/competency-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators shared by every service.
type ServiceManagerConfig struct {
	Auth      config.AuthConfig
	Tokens    *auth.TokenManager
	Gateway   *gateway.Gateway
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	authService       AuthService
	assessmentService AssessmentService
	userService       UserService
	adminService      AdminService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.Tokens == nil {
		return fmt.Errorf("token manager is required")
	}
	if sm.config.Gateway == nil {
		return fmt.Errorf("gateway is required")
	}
	if sm.config.Cache == nil {
		sm.config.Cache = cache.NewCacheManager(nil)
	}
	// profiles cached by an earlier process may predate a migration
	cache.ResetUserCaches(ctx, sm.config.Cache)

	sm.authService = NewAuthService(sm.repo, sm.config.Tokens, sm.config.Cache, sm.config.Auth, sm.logger, sm.validator)
	sm.logger.Info("Auth service initialized")

	sm.assessmentService = NewAssessmentService(sm.repo, sm.config.Gateway, sm.config.Cache, sm.config.Publisher, sm.logger, sm.validator)
	sm.logger.Info("Assessment service initialized")

	sm.userService = NewUserService(sm.repo, sm.config.Cache, sm.logger)
	sm.logger.Info("User service initialized")

	sm.adminService = NewAdminService(sm.repo, sm.logger)
	sm.logger.Info("Admin service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Assessment() AssessmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assessmentService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.adminService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
