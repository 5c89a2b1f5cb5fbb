package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes c and logs a failure under operation. A nil
// closer is ignored.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "close failed", err, slog.String("operation", operation))
	}
}

// SafeRollbackWithLogging rolls tx back and logs a failure. sql.ErrTxDone is
// ignored so the call can be deferred ahead of Commit.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}
	LogError(logger, "rollback failed", err, slog.String("operation", operation))
}

// HandleDeferredError runs op from a defer. Its failure is logged and, when
// the surrounding function had not already failed, returned through errp.
func HandleDeferredError(errp *error, op func() error, logger *slog.Logger, operation string) {
	if op == nil {
		return
	}
	err := op()
	if err == nil {
		return
	}
	LogError(logger, "deferred operation failed", err, slog.String("operation", operation))
	if *errp == nil {
		*errp = fmt.Errorf("%s: %w", operation, err)
	}
}
