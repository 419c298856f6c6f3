package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.AssessmentSession) error {
	db := getDB(s.db, tx)
	return translateError(db.WithContext(ctx).Create(session).Error, "failed to create session")
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentSession, error) {
	db := getDB(s.db, tx)
	var session models.AssessmentSession
	if err := db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get session")
	}
	return &session, nil
}

func (s *SessionPostgreSQL) IncrementCompleted(ctx context.Context, tx *gorm.DB, id, userID string) error {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).
		Model(&models.AssessmentSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("completed_count", gorm.Expr("LEAST(completed_count + 1, total_competencies)"))
	return requireRow(result, "failed to increment completed count")
}

func (s *SessionPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id, userID string, at time.Time) error {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).
		Model(&models.AssessmentSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":       models.SessionCompleted,
			"completed_at": at,
		})
	return requireRow(result, "failed to complete session")
}

func (s *SessionPostgreSQL) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*models.AssessmentSession, error) {
	db := getDB(s.db, tx)
	var sessions []*models.AssessmentSession

	query := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Preload("Results", func(q *gorm.DB) *gorm.DB {
			return q.Order("created_at ASC")
		}).
		Preload("Results.Responses", func(q *gorm.DB) *gorm.DB {
			return q.Order("question_number ASC")
		}).
		Preload("Results.IDPPlan")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, translateError(err, "failed to list sessions")
	}
	return sessions, nil
}
