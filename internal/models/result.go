package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentResult is one evaluation of one competency within a session.
// Rows are append-only; a re-take adds a new row.
type AssessmentResult struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	SessionID      string    `json:"sessionId" gorm:"not null;size:36;index"`
	UserID         string    `json:"userId" gorm:"not null;size:36;index"`
	CompetencyID   string    `json:"competencyId" gorm:"not null;size:20;index"`
	CompetencyName string    `json:"competencyName" gorm:"not null;size:255"`
	Score          float64   `json:"score" gorm:"not null"`
	StandardScore  float64   `json:"standardScore" gorm:"not null"`
	Gap            float64   `json:"gap" gorm:"not null"`
	Feedback       string    `json:"feedback" gorm:"type:text"`
	Source         string    `json:"source" gorm:"size:20"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index"`

	Responses []QuestionResponse `json:"responses,omitempty" gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
	IDPPlan   *IDPPlan           `json:"idpPlan,omitempty" gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}

func (r *AssessmentResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// QuestionResponse is one scenario and the user's answer to it.
type QuestionResponse struct {
	ID             string `json:"id" gorm:"primaryKey;size:36"`
	ResultID       string `json:"resultId" gorm:"not null;size:36;index"`
	QuestionNumber int    `json:"questionNumber" gorm:"not null"`
	Scenario       string `json:"scenario" gorm:"type:text;not null"`
	Response       string `json:"response" gorm:"type:text;not null"`
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}

func (q *QuestionResponse) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IDPPlan is the development plan attached to exactly one result.
type IDPPlan struct {
	ID                 string                      `json:"id" gorm:"primaryKey;size:36"`
	ResultID           string                      `json:"resultId" gorm:"not null;size:36;uniqueIndex"`
	TrainingCourses    datatypes.JSONSlice[string] `json:"trainingCourses" gorm:"type:jsonb"`
	NonTrainingCourses datatypes.JSONSlice[string] `json:"nonTrainingCourses" gorm:"type:jsonb"`
	Recommendation     string                      `json:"recommendation" gorm:"type:text"`
}

func (IDPPlan) TableName() string {
	return "idp_plans"
}

func (p *IDPPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
