package errors

// MongoDB helpers mirroring pg.go so repos on either backend report the same ErrorCodes

import (
	"context"
	stderrs "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoErrorCode maps a mongo driver error to an ErrorCode with an ok flag
// !ok means err did not come from the driver
func MongoErrorCode(err error) (ErrorCode, bool) {
	switch {
	case err == nil:
		return ErrorCodeUnknown, false
	case stderrs.Is(err, mongo.ErrNoDocuments):
		return ErrorCodeNotFound, true
	case mongo.IsDuplicateKeyError(err):
		return ErrorCodeDuplicateKey, true
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return ErrorCodeUnavailable, true
	}
	var se mongo.ServerError
	if stderrs.As(err, &se) {
		return ErrorCodeDB, true
	}
	return ErrorCodeUnknown, false
}

// FromMongo wraps a driver error with a mapped ErrorCode and message
// If err is nil, returns nil
func FromMongo(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := MongoErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromMongof is the formatted variant of FromMongo
func FromMongof(err error, format string, a ...any) error {
	return FromMongo(err, fmt.Sprintf(format, a...))
}

// IsMongoRetryable reports transient driver conditions: network blips, server selection timeouts
// and anything the server labelled as retryable
func IsMongoRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var se mongo.ServerError
	if stderrs.As(err, &se) {
		return se.HasErrorLabel("RetryableWriteError") || se.HasErrorLabel("TransientTransactionError")
	}
	return false
}
