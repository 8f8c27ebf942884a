package audit

import "github.com/shopspring/decimal"

// Tolerance is the largest debit/credit difference still treated as balanced.
var Tolerance = decimal.New(1, -2)

// Totals summarises the debit and credit sides of a set of lines.
type Totals struct {
	Debits     decimal.Decimal `json:"debits"`
	Credits    decimal.Decimal `json:"credits"`
	Balance    decimal.Decimal `json:"balance"`
	IsBalanced bool            `json:"isBalanced"`
}

// ComputeTotals sums debits and credits. Balance is the absolute difference and
// the lines are balanced when it is strictly below Tolerance.
func ComputeTotals(lines []Line) Totals {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range lines {
		switch l.Type {
		case Debit:
			debits = debits.Add(l.Amount)
		case Credit:
			credits = credits.Add(l.Amount)
		}
	}
	balance := debits.Sub(credits).Abs()
	return Totals{
		Debits:     debits,
		Credits:    credits,
		Balance:    balance,
		IsBalanced: balance.LessThan(Tolerance),
	}
}

// CanPost reports whether lines may be posted: they must balance and every
// amount must be positive.
func CanPost(lines []Line) bool {
	if !ComputeTotals(lines).IsBalanced {
		return false
	}
	for _, l := range lines {
		if !l.Amount.IsPositive() {
			return false
		}
	}
	return true
}

// CanSave reports whether e may be saved with the target status. Drafts are
// always saveable.
func CanSave(e *Entry, target Status) bool {
	if target == StatusDraft {
		return true
	}
	return CanPost(e.Lines)
}
