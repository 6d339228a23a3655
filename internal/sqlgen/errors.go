package sqlgen

import "fmt"

// TranslationError indicates a plan construct the compiler cannot
// express in SQL. It is deterministic and raised while building, never
// at execution time; callers should treat it as a bug in the query,
// not a transient failure.
type TranslationError struct {
	Construct string
	Reason    string
}

func (e *TranslationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot translate %s: %s", e.Construct, e.Reason)
	}
	return fmt.Sprintf("cannot translate %s", e.Construct)
}

// NewTranslationError creates a new translation error naming the
// offending construct.
func NewTranslationError(construct string, reason ...string) error {
	err := &TranslationError{Construct: construct}
	if len(reason) > 0 {
		err.Reason = reason[0]
	}
	return err
}
