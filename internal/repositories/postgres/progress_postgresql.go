package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// Upsert is one INSERT ... ON CONFLICT statement, so concurrent evaluations of
// the same pair cannot create a second row or overwrite first_score.
func (p *ProgressPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, userID, competencyID string, score float64, at time.Time) error {
	db := getDB(p.db, tx)

	row := models.ProgressTracking{
		ID:               uuid.NewString(),
		UserID:           userID,
		CompetencyID:     competencyID,
		FirstScore:       score,
		LatestScore:      score,
		AssessmentCount:  1,
		ImprovementTrend: 0,
		LastAssessedAt:   at,
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "competency_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"latest_score":      score,
			"assessment_count":  gorm.Expr("progress_tracking.assessment_count + 1"),
			"improvement_trend": gorm.Expr("? - progress_tracking.first_score", score),
			"last_assessed_at":  at,
			"updated_at":        at,
		}),
	}).Create(&row).Error

	return translateError(err, "failed to upsert progress")
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID, competencyID string) (*models.ProgressTracking, error) {
	db := getDB(p.db, tx)
	var progress models.ProgressTracking
	if err := db.WithContext(ctx).
		First(&progress, "user_id = ? AND competency_id = ?", userID, competencyID).Error; err != nil {
		return nil, translateError(err, "failed to get progress")
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ProgressTracking, error) {
	db := getDB(p.db, tx)
	var progress []*models.ProgressTracking
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_assessed_at DESC").
		Find(&progress).Error; err != nil {
		return nil, translateError(err, "failed to list progress")
	}
	return progress, nil
}
