package audit

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCode          = errors.New("Entry code is required")
	ErrNoLines              = errors.New("At least one entry line is required")
	ErrInvalidAccountID     = errors.New("Invalid account ID format")
	ErrNonPositiveAmount    = errors.New("Amount must be greater than zero")
	ErrUnbalancedEntry      = errors.New("Debits and credits must balance before posting")
	ErrInvalidKind          = errors.New("invalid entry type")
	ErrInvalidStatus        = errors.New("invalid entry status")
	ErrInvalidLineType      = errors.New("invalid line type")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrEntryNotFound        = errors.New("audit entry not found")
	ErrTrialBalanceNotFound = errors.New("trial balance not found")
	ErrAccountNotFound      = errors.New("trial balance account not found")
	ErrDuplicateCode        = errors.New("entry code already exists")
)

// ValidationError pins a local validation failure to a line and field.
// Line is 1-based; zero means the failure concerns the entry as a whole.
type ValidationError struct {
	Line  int
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("Entry %d: %s", e.Line, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
