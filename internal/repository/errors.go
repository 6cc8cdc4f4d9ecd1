package repository

import (
	"errors"
	"strings"
	"time"

	"travelcore/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure from any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps storage errors onto the application taxonomy. AppErrors pass through.
func translate(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if IsUniqueViolation(err) {
		return models.NewValidationErrorKind(models.KindUniqueness, resource+" violates a uniqueness constraint")
	}
	return err
}

// translateUnique reports a duplicate value of field as a uniqueness validation error.
func translateUnique(err error, resource, field string, value interface{}) error {
	if IsUniqueViolation(err) {
		return models.NewUniquenessError(resource, field, value)
	}
	return err
}

// translateConflict classifies a unique violation on an atomic path as a concurrency conflict.
func translateConflict(err error, op string) error {
	if IsUniqueViolation(err) {
		return models.NewConcurrencyError(op+" conflicted with a concurrent write", err)
	}
	return err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
