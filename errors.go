package d1q

import (
	"errors"

	"github.com/jdtoon/d1q/internal/sqlgen"
)

// ErrNoRows is returned by First and Single when the query matches no
// rows.
var ErrNoRows = errors.New("d1q: no rows in result")

// ErrMultipleRows is returned by Single when the query matches more
// than one row.
var ErrMultipleRows = errors.New("d1q: more than one row in result")

// TranslationError indicates a plan construct the compiler cannot
// express in SQL. It is re-exported so callers can distinguish
// build-time failures (a caller bug, never retried) from execution
// errors, which pass through from the executor unchanged.
type TranslationError = sqlgen.TranslationError

// IsTranslationError reports whether err is a translation error.
func IsTranslationError(err error) bool {
	var te *TranslationError
	return errors.As(err, &te)
}
