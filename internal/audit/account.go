package audit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceAccount is one row of an externally supplied trial balance.
// The ledger engine never mutates it.
type TrialBalanceAccount struct {
	AccountID        string          `json:"accountId"`
	Code             string          `json:"code"`
	AccountName      string          `json:"accountName"`
	Classification   string          `json:"classification,omitempty"`
	CurrentYear      decimal.Decimal `json:"currentYear"`
	PriorYear        decimal.Decimal `json:"priorYear"`
	ReClassification decimal.Decimal `json:"reClassification"`
	Adjustments      decimal.Decimal `json:"adjustments"`
	FinalBalance     decimal.Decimal `json:"finalBalance"`
}

// TrialBalance is a trial balance snapshot together with its accounts.
type TrialBalance struct {
	ID        string                `json:"id"`
	CycleID   string                `json:"cycleId"`
	Name      string                `json:"name"`
	Accounts  []TrialBalanceAccount `json:"accounts"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Recompute derives FinalBalance from the current-year balance and the
// adjustment and reclassification columns.
func (a *TrialBalanceAccount) Recompute() {
	a.FinalBalance = a.CurrentYear.Add(a.ReClassification).Add(a.Adjustments)
}

// FindAccount returns the account with the given id, or nil.
func (tb *TrialBalance) FindAccount(id string) *TrialBalanceAccount {
	for i := range tb.Accounts {
		if strings.EqualFold(tb.Accounts[i].AccountID, id) {
			return &tb.Accounts[i]
		}
	}
	return nil
}

const Unclassified = "Unclassified"

// ClassificationLabel returns the account's classification, falling back to
// the label implied by its code range.
func (a TrialBalanceAccount) ClassificationLabel() string {
	if c := strings.TrimSpace(a.Classification); c != "" {
		return c
	}
	return ClassificationForCode(a.Code)
}

// ClassificationForCode derives a top-level classification from the leading
// digit of an account code (1xxx assets through 5xxx+ expenses).
func ClassificationForCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return Unclassified
	}
	switch code[0] {
	case '1':
		return "Assets"
	case '2':
		return "Liabilities"
	case '3':
		return "Equity"
	case '4':
		return "Revenue"
	case '5', '6', '7', '8', '9':
		return "Expenses"
	default:
		return Unclassified
	}
}
