package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) repositories.RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) ListUsers(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := getDB(r.db, tx)
	var users []*models.User
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, translateError(err, "failed to list users")
	}
	return users, nil
}

func (r *rosterRepository) SessionStats(ctx context.Context, tx *gorm.DB) ([]repositories.SessionStatRow, error) {
	db := getDB(r.db, tx)
	var rows []repositories.SessionStatRow
	if err := db.WithContext(ctx).
		Model(&models.AssessmentSession{}).
		Select("user_id, status, COUNT(*) AS count").
		Group("user_id, status").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err, "failed to get session stats")
	}
	return rows, nil
}

func (r *rosterRepository) ResultStats(ctx context.Context, tx *gorm.DB) ([]repositories.ResultStatRow, error) {
	db := getDB(r.db, tx)
	var rows []repositories.ResultStatRow
	if err := db.WithContext(ctx).
		Model(&models.AssessmentResult{}).
		Select(`user_id,
			COUNT(*) AS count,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(AVG(gap), 0) AS average_gap,
			MAX(created_at) AS last_result_at`).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err, "failed to get result stats")
	}
	return rows, nil
}
