package repository

import (
	"errors"

	"github.com/sangkips/tablepos/pkg/apperror"
	"gorm.io/gorm"
)

// wrapDB classifies a storage error. Application errors raised inside a
// gorm transaction callback pass through unchanged.
func wrapDB(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewPersistenceError(op, err)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
