package persistence

import (
	"errors"
	"fmt"

	"github.com/shopbill/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// findError maps a missing row to NOT_FOUND for the named resource
func findError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// writeError maps a unique constraint violation to ALREADY_EXISTS. It relies
// on the connection being opened with TranslateError.
func writeError(err error, resource string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
	}
	return err
}

// deleteResult turns a delete that matched nothing into NOT_FOUND
func deleteResult(result *gorm.DB, resource string) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(resource)
	}
	return nil
}
