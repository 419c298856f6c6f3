package services

import (
	"context"
	"io"
	"time"

	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/models"
)

// ===== AUTH DTOs =====

type RegisterRequest struct {
	Username        string   `json:"username" validate:"required,min=3,max=100"`
	Password        string   `json:"password" validate:"required,min=6,max=128"`
	Email           *string  `json:"email" validate:"omitempty,email,max=255"`
	Department      *string  `json:"department" validate:"omitempty,max=255"`
	ExperienceYears int      `json:"experienceYears" validate:"min=0,max=60"`
	Level           *int     `json:"level" validate:"omitempty,min=1,max=5"`
	StandardScore   *float64 `json:"standardScore" validate:"omitempty,score_range"`
}

// LoginRequest logs a user in, creating the account on first use.
// Profile fields, when present, replace the stored experience profile.
type LoginRequest struct {
	Username        string   `json:"username" validate:"required,min=3,max=100"`
	Password        string   `json:"password" validate:"omitempty,max=128"`
	ExperienceYears *int     `json:"experienceYears" validate:"omitempty,min=0,max=60"`
	Level           *int     `json:"level" validate:"omitempty,min=1,max=5"`
	StandardScore   *float64 `json:"standardScore" validate:"omitempty,score_range"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type AdminInfo struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

type AdminAuthResponse struct {
	Token string    `json:"token"`
	Admin AdminInfo `json:"admin"`
}

// ===== ASSESSMENT DTOs =====

type StartSessionRequest struct {
	Language          models.Language `json:"language" validate:"required,language"`
	TotalCompetencies int             `json:"totalCompetencies" validate:"required,min=1,max=11"`
}

type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type GenerateScenariosRequest struct {
	CompetencyName  string          `json:"competencyName" validate:"required,max=255"`
	Language        models.Language `json:"language" validate:"required,language"`
	ExperienceYears int             `json:"experienceYears" validate:"min=0,max=60"`
	Count           int             `json:"count" validate:"min=0,max=10"`
}

type EvaluateRequest struct {
	SessionID      string            `json:"sessionId"`
	CompetencyID   string            `json:"competencyId" validate:"required,competency_id"`
	CompetencyName string            `json:"competencyName" validate:"required,max=255"`
	Scenarios      []models.Scenario `json:"scenarios" validate:"required,min=1,max=10"`
	Responses      []string          `json:"responses" validate:"max=10"`
	Language       models.Language   `json:"language" validate:"required,language"`
	StandardScore  float64           `json:"standardScore" validate:"score_range"`
}

type VoiceRequest struct {
	Text     string          `json:"text" validate:"required,max=5000"`
	Language models.Language `json:"language" validate:"required,language"`
}

type VoiceResponse struct {
	AudioData string `json:"audioData"`
}

type ConsolidatedSummaryRequest struct {
	ExperienceYears int                   `json:"experienceYears" validate:"min=0,max=60"`
	Results         []gateway.SummaryItem `json:"results" validate:"required,min=1,max=11,dive"`
	Language        models.Language       `json:"language" validate:"required,language"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type CompleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// ===== ADMIN DTOs =====

// NurseStats is one roster row; every number is recomputed per request.
type NurseStats struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             *string    `json:"email"`
	Department        *string    `json:"department"`
	ExperienceYears   int        `json:"experienceYears"`
	Level             int        `json:"level"`
	StandardScore     float64    `json:"standardScore"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLogin         *time.Time `json:"lastLogin"`
	TotalSessions     int64      `json:"totalSessions"`
	CompletedSessions int64      `json:"completedSessions"`
	CompletionRate    float64    `json:"completionRate"`
	AssessmentCount   int64      `json:"assessmentCount"`
	AverageScore      float64    `json:"averageScore"`
	AverageGap        float64    `json:"averageGap"`
	LastAssessedAt    *time.Time `json:"lastAssessedAt"`
}

type RosterSummary struct {
	TotalNurses  int `json:"totalNurses"`
	ActiveNurses int `json:"activeNurses"`
}

type RosterResponse struct {
	Summary RosterSummary `json:"summary"`
	Nurses  []NurseStats  `json:"nurses"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	AdminLogin(ctx context.Context, req *AdminLoginRequest) (*AdminAuthResponse, error)
}

type AssessmentService interface {
	Competencies() []models.Competency

	// Session lifecycle
	StartSession(ctx context.Context, req *StartSessionRequest, userID string) (*StartSessionResponse, error)
	CompleteSession(ctx context.Context, sessionID, userID string) error
	GetSessionResults(ctx context.Context, sessionID, userID string) ([]*models.AssessmentResult, error)

	// Generative operations
	GenerateScenarios(ctx context.Context, req *GenerateScenariosRequest) ([]models.Scenario, error)
	Evaluate(ctx context.Context, req *EvaluateRequest, userID string) (*models.Evaluation, error)
	GenerateVoice(ctx context.Context, req *VoiceRequest) (*VoiceResponse, error)
	GenerateConsolidatedSummary(ctx context.Context, req *ConsolidatedSummaryRequest) (*SummaryResponse, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	GetProgress(ctx context.Context, userID string) ([]*models.ProgressTracking, error)
	GetHistory(ctx context.Context, userID string) ([]*models.AssessmentSession, error)
}

type AdminService interface {
	GetNurseRoster(ctx context.Context) (*RosterResponse, error)
	ExportNurseRoster(ctx context.Context, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Assessment() AssessmentService
	User() UserService
	Admin() AdminService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
