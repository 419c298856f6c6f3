package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressTracking is the rolling record for one (user, competency) pair.
// FirstScore is written once by the insert; later evaluations only touch the other columns.
type ProgressTracking struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	UserID           string    `json:"userId" gorm:"not null;size:36;uniqueIndex:idx_progress_user_competency"`
	CompetencyID     string    `json:"competencyId" gorm:"not null;size:20;uniqueIndex:idx_progress_user_competency"`
	FirstScore       float64   `json:"firstScore" gorm:"not null"`
	LatestScore      float64   `json:"latestScore" gorm:"not null"`
	AssessmentCount  int       `json:"assessmentCount" gorm:"not null;default:1"`
	ImprovementTrend float64   `json:"improvementTrend" gorm:"not null;default:0"`
	LastAssessedAt   time.Time `json:"lastAssessedAt" gorm:"not null;index"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (ProgressTracking) TableName() string {
	return "progress_tracking"
}

func (p *ProgressTracking) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every table for AutoMigrate, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&AssessmentSession{},
		&AssessmentResult{},
		&QuestionResponse{},
		&IDPPlan{},
		&ProgressTracking{},
	}
}
