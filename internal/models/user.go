package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	Username        string     `json:"username" gorm:"uniqueIndex;not null;size:100"`
	Email           *string    `json:"email,omitempty" gorm:"size:255"`
	Department      *string    `json:"department,omitempty" gorm:"size:255"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	ExperienceYears int        `json:"experienceYears" gorm:"not null;default:0"`
	Level           int        `json:"level" gorm:"not null;default:1"`
	StandardScore   float64    `json:"standardScore" gorm:"not null;default:1"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"-"`
	LastLogin       *time.Time `json:"lastLogin"`

	Sessions []AssessmentSession `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the user shape returned alongside auth tokens.
type UserSummary struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	ExperienceYears int     `json:"experienceYears"`
	Level           int     `json:"level"`
	StandardScore   float64 `json:"standardScore"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Username:        u.Username,
		ExperienceYears: u.ExperienceYears,
		Level:           u.Level,
		StandardScore:   u.StandardScore,
	}
}
