package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/medihack/competency-service/internal/repositories"
)

// getDB returns tx when the caller is inside a transaction, db otherwise.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// translateError maps gorm errors onto repository sentinels.
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// requireRow turns a zero-row write into ErrNotFound.
func requireRow(result *gorm.DB, what string) error {
	if result.Error != nil {
		return translateError(result.Error, what)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return nil
}
