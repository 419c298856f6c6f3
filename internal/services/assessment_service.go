package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/events"
	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/metrics"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
	"github.com/medihack/competency-service/internal/validator"
)

// DefaultScenarioCount is used when a generate request leaves count at zero.
const DefaultScenarioCount = 3

var ErrSessionIDRequired = errors.New("session id is required")

type assessmentService struct {
	repo      repositories.Repository
	gateway   *gateway.Gateway
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAssessmentService(repo repositories.Repository, gw *gateway.Gateway, cm *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AssessmentService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &assessmentService{
		repo:      repo,
		gateway:   gw,
		cache:     cm,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *assessmentService) Competencies() []models.Competency {
	return models.Catalog()
}

func (s *assessmentService) StartSession(ctx context.Context, req *StartSessionRequest, userID string) (*StartSessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session := &models.AssessmentSession{
		UserID:            userID,
		Status:            models.SessionInProgress,
		Language:          req.Language,
		TotalCompetencies: req.TotalCompetencies,
		StartedAt:         s.now(),
	}
	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Assessment session started",
		"session_id", session.ID,
		"user_id", userID,
		"total_competencies", session.TotalCompetencies)

	s.publish(ctx, events.NewEvent(events.TypeSessionStarted, events.SessionStartedEvent{
		SessionID:         session.ID,
		UserID:            userID,
		Language:          string(session.Language),
		TotalCompetencies: session.TotalCompetencies,
	}))

	return &StartSessionResponse{SessionID: session.ID}, nil
}

func (s *assessmentService) CompleteSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.getOwnedSession(ctx, sessionID, userID, "complete")
	if err != nil {
		return err
	}
	if session.IsComplete() {
		return nil
	}

	completedAt := s.now()
	if err := s.repo.Session().MarkCompleted(ctx, nil, session.ID, userID, completedAt); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	s.logger.Info("Assessment session completed", "session_id", session.ID, "user_id", userID)
	cache.InvalidateUserCache(ctx, s.cache, userID)

	s.publish(ctx, events.NewEvent(events.TypeSessionCompleted, events.SessionCompletedEvent{
		SessionID:      session.ID,
		UserID:         userID,
		CompletedCount: session.CompletedCount,
		CompletedAt:    completedAt,
	}))
	return nil
}

func (s *assessmentService) GetSessionResults(ctx context.Context, sessionID, userID string) ([]*models.AssessmentResult, error) {
	if _, err := s.getOwnedSession(ctx, sessionID, userID, "read"); err != nil {
		return nil, err
	}

	results, err := s.repo.Result().ListBySession(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return results, nil
}

func (s *assessmentService) GenerateScenarios(ctx context.Context, req *GenerateScenariosRequest) ([]models.Scenario, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	count := req.Count
	if count == 0 {
		count = DefaultScenarioCount
	}

	return s.gateway.GenerateScenarios(ctx, gateway.ScenarioRequest{
		CompetencyName:  req.CompetencyName,
		Language:        req.Language,
		ExperienceYears: req.ExperienceYears,
		Count:           count,
	})
}

// Evaluate scores one competency and stores the outcome. Ownership is checked
// before the generative call, so a foreign session costs nothing and writes nothing.
func (s *assessmentService) Evaluate(ctx context.Context, req *EvaluateRequest, userID string) (*models.Evaluation, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrSessionIDRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateEvaluationInput(req.Scenarios, req.Responses); len(errs) > 0 {
		return nil, errs
	}

	session, err := s.getOwnedSession(ctx, req.SessionID, userID, "evaluate")
	if err != nil {
		return nil, err
	}

	eval, err := s.gateway.EvaluateResponses(ctx, gateway.EvaluationRequest{
		Scenarios:      req.Scenarios,
		Responses:      req.Responses,
		CompetencyName: req.CompetencyName,
		StandardScore:  req.StandardScore,
		Language:       req.Language,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.storeEvaluation(ctx, session, req, eval, userID)
	if err != nil {
		return nil, err
	}

	metrics.EvaluationScores.WithLabelValues(eval.Source).Observe(eval.Score)
	cache.InvalidateUserCache(ctx, s.cache, userID)

	s.logger.Info("Evaluation stored",
		"session_id", session.ID,
		"result_id", result.ID,
		"competency_id", req.CompetencyID,
		"score", eval.Score,
		"source", eval.Source)

	s.publish(ctx, events.NewEvent(events.TypeEvaluated, events.EvaluatedEvent{
		SessionID:    session.ID,
		UserID:       userID,
		ResultID:     result.ID,
		CompetencyID: result.CompetencyID,
		Score:        result.Score,
		Gap:          result.Gap,
		Source:       result.Source,
	}))

	return eval, nil
}

func (s *assessmentService) GenerateVoice(ctx context.Context, req *VoiceRequest) (*VoiceResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	key := cache.VoiceKey(string(req.Language), req.Text)
	if audio, err := s.cache.Voice.GetString(ctx, key); err == nil {
		return &VoiceResponse{AudioData: audio}, nil
	}

	audio, err := s.gateway.GenerateVoiceAudio(ctx, req.Text, req.Language)
	if err != nil {
		return nil, err
	}

	// an empty result means quota ran out; try again next time
	if audio != "" {
		if err := s.cache.Voice.SetString(ctx, key, audio, cache.VoiceCacheConfig.TTL); err != nil {
			s.logger.Warn("Failed to cache voice audio", "error", err)
		}
	}

	return &VoiceResponse{AudioData: audio}, nil
}

func (s *assessmentService) GenerateConsolidatedSummary(ctx context.Context, req *ConsolidatedSummaryRequest) (*SummaryResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	summary, err := s.gateway.GenerateConsolidatedSummary(ctx, gateway.SummaryRequest{
		ExperienceYears: req.ExperienceYears,
		Results:         req.Results,
		Language:        req.Language,
	})
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{Summary: summary}, nil
}
