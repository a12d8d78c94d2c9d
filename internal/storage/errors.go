package storage

import (
	"errors"
	"fmt"

	"dailymoney/internal/apperrors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// WrapError classifies a driver error into the shared taxonomy: constraint
// violations (unique keys, foreign keys, checks) become ErrConstraint,
// everything else becomes ErrStorage. The original error text is preserved.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorage, err)
}
