package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// AssessmentSession is one assessment run for a user.
type AssessmentSession struct {
	ID                string        `json:"id" gorm:"primaryKey;size:36"`
	UserID            string        `json:"userId" gorm:"not null;size:36;index"`
	Status            SessionStatus `json:"status" gorm:"not null;size:20;default:'in_progress';index"`
	Language          Language      `json:"language" gorm:"not null;size:5"`
	TotalCompetencies int           `json:"totalCompetencies" gorm:"not null"`
	CompletedCount    int           `json:"completedCount" gorm:"not null;default:0"`
	StartedAt         time.Time     `json:"startedAt" gorm:"not null;index"`
	CompletedAt       *time.Time    `json:"completedAt"`

	Results []AssessmentResult `json:"results,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

func (s *AssessmentSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	return nil
}

func (s *AssessmentSession) IsOwnedBy(userID string) bool {
	return s.UserID == userID
}

func (s *AssessmentSession) IsComplete() bool {
	return s.Status == SessionCompleted
}
