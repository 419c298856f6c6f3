package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/models"
)

// Every method takes an optional tx; nil means the repository's own connection.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error
	UpdateProfile(ctx context.Context, tx *gorm.DB, id string, profile ProfileUpdate) error
}

type ProfileUpdate struct {
	ExperienceYears int
	Level           int
	StandardScore   float64
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.AssessmentSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentSession, error)

	// IncrementCompleted adds one to completed_count, never beyond total_competencies.
	// Only a session owned by userID is touched; otherwise ErrNotFound.
	IncrementCompleted(ctx context.Context, tx *gorm.DB, id, userID string) error

	// MarkCompleted sets status and completed_at on a session owned by userID.
	MarkCompleted(ctx context.Context, tx *gorm.DB, id, userID string, at time.Time) error

	// ListRecentByUser returns the newest sessions with results, responses and plans.
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*models.AssessmentSession, error)
}

type ResultRepository interface {
	// Create inserts the result row only; responses and plan are separate writes.
	Create(ctx context.Context, tx *gorm.DB, result *models.AssessmentResult) error
	CreateResponses(ctx context.Context, tx *gorm.DB, responses []models.QuestionResponse) error
	CreateIDPPlan(ctx context.Context, tx *gorm.DB, plan *models.IDPPlan) error

	// ListBySession returns a session's results for userID, oldest first, with
	// responses and plan loaded.
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID, userID string) ([]*models.AssessmentResult, error)
}

type ProgressRepository interface {
	// Upsert records one evaluation in a single statement. The first insert sets
	// FirstScore; later calls update the latest score, count and trend.
	Upsert(ctx context.Context, tx *gorm.DB, userID, competencyID string, score float64, at time.Time) error
	Get(ctx context.Context, tx *gorm.DB, userID, competencyID string) (*models.ProgressTracking, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.ProgressTracking, error)
}

type RosterRepository interface {
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	SessionStats(ctx context.Context, tx *gorm.DB) ([]SessionStatRow, error)
	ResultStats(ctx context.Context, tx *gorm.DB) ([]ResultStatRow, error)
}

// SessionStatRow is a session count for one (user, status) group.
type SessionStatRow struct {
	UserID string
	Status models.SessionStatus
	Count  int64
}

// ResultStatRow aggregates all results of one user.
type ResultStatRow struct {
	UserID       string
	Count        int64
	AverageScore float64
	AverageGap   float64
	LastResultAt *time.Time
}
