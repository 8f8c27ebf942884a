package audit

import (
	"fmt"
	"regexp"
	"strings"
)

var accountIDRe = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidAccountID reports whether id is a canonical hyphenated UUID.
func ValidAccountID(id string) bool {
	return accountIDRe.MatchString(id)
}

// Validate checks e for submission with the target status and returns the
// first violation found. Balance is only enforced when posting.
func Validate(e *Entry, target Status) error {
	if strings.TrimSpace(e.Code) == "" {
		return &ValidationError{Field: "code", Err: ErrMissingCode}
	}
	if len(e.Lines) == 0 {
		return &ValidationError{Field: "lines", Err: ErrNoLines}
	}
	for i, l := range e.Lines {
		if !ValidAccountID(l.AccountID) {
			return &ValidationError{Line: i + 1, Field: "accountId", Err: ErrInvalidAccountID}
		}
		if l.Type != Debit && l.Type != Credit {
			return &ValidationError{Line: i + 1, Field: "type", Err: ErrInvalidLineType}
		}
		if !l.Amount.IsPositive() {
			return &ValidationError{Line: i + 1, Field: "amount", Err: ErrNonPositiveAmount}
		}
	}
	if target == StatusPosted {
		t := ComputeTotals(e.Lines)
		if !t.IsBalanced {
			return &ValidationError{
				Field: "lines",
				Err: fmt.Errorf("%w: debits %s, credits %s",
					ErrUnbalancedEntry, t.Debits.StringFixed(2), t.Credits.StringFixed(2)),
			}
		}
	}
	return nil
}
