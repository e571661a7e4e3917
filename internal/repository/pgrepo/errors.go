package pgrepo

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	lockNotAvailableCode     = "55P03"
	deadlockDetectedCode     = "40P01"
	serializationFailureCode = "40001"
)

// convertErr brings a driver error to the repository error format: "[repository/<context>] <kind>: <original>".
//   - pgx.ErrNoRows becomes domain.ErrRecordNotFound;
//   - unique violation becomes domain.ErrDuplicateKey, a missing referenced row domain.ErrRecordNotFound;
//   - lock timeout becomes domain.ErrLockTimeout, deadlock and serialization failures domain.ErrConflict;
//   - anything else is domain.ErrPersistence.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrPersistence

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrRecordNotFound
		case lockNotAvailableCode:
			errType = domain.ErrLockTimeout
		case deadlockDetectedCode, serializationFailureCode:
			errType = domain.ErrConflict
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
