package errors

// Postgres helpers, kept in step with mongo.go so repos on either backend report the same ErrorCodes

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the menus repo can hit
const (
	sqlUniqueViolation     = "23505"
	sqlForeignKeyViolation = "23503"
	sqlNotNullViolation    = "23502"
	sqlCheckViolation      = "23514"
	sqlStringTooLong       = "22001"
	sqlBadTextValue        = "22P02"
	sqlBadDatetime         = "22007"

	sqlSerializationFailure = "40001"
	sqlDeadlock             = "40P01"
	sqlLockNotAvailable     = "55P03"
	sqlQueryCanceled        = "57014" // statement_timeout
	sqlReadOnly             = "25006"
	sqlCannotConnectNow     = "57P03"
	sqlAdminShutdown        = "57P01"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsDuplicateKey reports a unique constraint violation anywhere in err's chain
func IsDuplicateKey(err error) bool {
	pe, ok := pgError(err)
	return ok && pe.Code == sqlUniqueViolation
}

// DBErrorCode maps a Postgres error to an ErrorCode, ok is false when err carries no PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pe, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pe.Code {
	case sqlUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case sqlForeignKeyViolation, sqlStringTooLong, sqlBadTextValue, sqlBadDatetime:
		return ErrorCodeInvalidArgument, true
	case sqlNotNullViolation, sqlCheckViolation:
		return ErrorCodeValidation, true
	case sqlReadOnly, sqlCannotConnectNow, sqlAdminShutdown:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped ErrorCode, nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresWithField is FromPostgres plus the offending column when the server named one
// a constraint name such as menus_location_day_key yields its middle part (location_day)
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pe, ok := pgError(err)
	if !ok {
		return out
	}
	if col := strings.TrimSpace(pe.ColumnName); col != "" {
		return WithField(out, col)
	}
	name := strings.TrimSpace(pe.ConstraintName)
	if pe.TableName != "" {
		name = strings.TrimPrefix(name, pe.TableName+"_")
	}
	for _, suf := range []string{"_key", "_fkey", "_check", "_idx"} {
		name = strings.TrimSuffix(name, suf)
	}
	if name != "" && name != pe.ConstraintName {
		return WithField(out, name)
	}
	return out
}

// IsRetryable reports transient Postgres conditions: lock contention, serialization failures,
// statement timeouts and a server going away. Local context cancellation never retries.
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		switch pe.Code {
		case sqlSerializationFailure, sqlDeadlock, sqlLockNotAvailable, sqlQueryCanceled,
			sqlCannotConnectNow, sqlAdminShutdown:
			return true
		}
		return false
	}
	// pgx reports a failed commit as text only
	return strings.Contains(strings.ToLower(Root(err).Error()), "commit unexpectedly resulted in rollback")
}
