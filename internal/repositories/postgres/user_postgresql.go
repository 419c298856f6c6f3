package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(u.db, tx)
	return translateError(db.WithContext(ctx).Create(user).Error, "failed to create user")
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := getDB(u.db, tx)
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get user")
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := getDB(u.db, tx)
	var user models.User
	if err := db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateError(err, "failed to get user by username")
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	db := getDB(u.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, translateError(err, "failed to check username")
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	db := getDB(u.db, tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at)
	return requireRow(result, "failed to update last login")
}

func (u *UserPostgreSQL) UpdateProfile(ctx context.Context, tx *gorm.DB, id string, profile repositories.ProfileUpdate) error {
	db := getDB(u.db, tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"experience_years": profile.ExperienceYears,
			"level":            profile.Level,
			"standard_score":   profile.StandardScore,
		})
	return requireRow(result, "failed to update profile")
}
