package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.AssessmentResult) error {
	db := getDB(r.db, tx)
	err := db.WithContext(ctx).Omit(clause.Associations).Create(result).Error
	return translateError(err, "failed to create result")
}

func (r *ResultPostgreSQL) CreateResponses(ctx context.Context, tx *gorm.DB, responses []models.QuestionResponse) error {
	if len(responses) == 0 {
		return nil
	}
	db := getDB(r.db, tx)
	return translateError(db.WithContext(ctx).Create(&responses).Error, "failed to create question responses")
}

func (r *ResultPostgreSQL) CreateIDPPlan(ctx context.Context, tx *gorm.DB, plan *models.IDPPlan) error {
	db := getDB(r.db, tx)
	return translateError(db.WithContext(ctx).Create(plan).Error, "failed to create IDP plan")
}

func (r *ResultPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID, userID string) ([]*models.AssessmentResult, error) {
	db := getDB(r.db, tx)
	var results []*models.AssessmentResult
	if err := db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at ASC").
		Preload("Responses", func(q *gorm.DB) *gorm.DB {
			return q.Order("question_number ASC")
		}).
		Preload("IDPPlan").
		Find(&results).Error; err != nil {
		return nil, translateError(err, "failed to list results")
	}
	return results, nil
}
