package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/medihack/competency-service/internal/events"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

// getOwnedSession loads a session and checks that userID owns it.
func (s *assessmentService) getOwnedSession(ctx context.Context, sessionID, userID, action string) (*models.AssessmentSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionIDRequired
	}

	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.IsOwnedBy(userID) {
		s.logger.Warn("Session access denied",
			"session_id", sessionID,
			"user_id", userID,
			"action", action)
		return nil, NewPermissionError(userID, sessionID, "session", action, "session belongs to another user")
	}
	return session, nil
}

// storeEvaluation writes the result, its responses and plan, the progress
// record and the session counter in one transaction.
func (s *assessmentService) storeEvaluation(ctx context.Context, session *models.AssessmentSession, req *EvaluateRequest, eval *models.Evaluation, userID string) (*models.AssessmentResult, error) {
	now := s.now()
	result := buildResult(session, req, eval, userID)
	result.CreatedAt = now

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Result().Create(ctx, nil, result); err != nil {
			return err
		}
		if err := tx.Result().CreateResponses(ctx, nil, buildResponses(result.ID, req)); err != nil {
			return err
		}
		if err := tx.Result().CreateIDPPlan(ctx, nil, buildIDPPlan(result.ID, eval.IDP)); err != nil {
			return err
		}
		if err := tx.Progress().Upsert(ctx, nil, userID, req.CompetencyID, eval.Score, now); err != nil {
			return err
		}
		return tx.Session().IncrementCompleted(ctx, nil, session.ID, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}
	return result, nil
}

func buildResult(session *models.AssessmentSession, req *EvaluateRequest, eval *models.Evaluation, userID string) *models.AssessmentResult {
	return &models.AssessmentResult{
		SessionID:      session.ID,
		UserID:         userID,
		CompetencyID:   req.CompetencyID,
		CompetencyName: req.CompetencyName,
		Score:          eval.Score,
		StandardScore:  req.StandardScore,
		Gap:            models.Gap(eval.Score, req.StandardScore),
		Feedback:       eval.Feedback,
		Source:         eval.Source,
	}
}

func buildResponses(resultID string, req *EvaluateRequest) []models.QuestionResponse {
	out := make([]models.QuestionResponse, 0, len(req.Scenarios))
	for i, sc := range req.Scenarios {
		out = append(out, models.QuestionResponse{
			ResultID:       resultID,
			QuestionNumber: i + 1,
			Scenario:       sc.Text,
			Response:       models.ResponseAt(req.Responses, i),
		})
	}
	return out
}

func buildIDPPlan(resultID string, idp models.IDP) *models.IDPPlan {
	training := idp.TrainingCourses
	if training == nil {
		training = []string{}
	}
	nonTraining := idp.NonTrainingCourses
	if nonTraining == nil {
		nonTraining = []string{}
	}
	return &models.IDPPlan{
		ResultID:           resultID,
		TrainingCourses:    training,
		NonTrainingCourses: nonTraining,
		Recommendation:     idp.Recommendation,
	}
}

// publish sends an event; a broker failure never fails the request.
func (s *assessmentService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "type", event.Type, "error", err)
	}
}
