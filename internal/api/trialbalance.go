package api

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simonvc/auditledger/internal/audit"
)

type TrialBalance audit.TrialBalance

func (tb TrialBalance) Validate() error {
	if tb.ID == "" {
		return errors.New("trial balance id is empty")
	}
	for i, a := range tb.Accounts {
		if !audit.ValidAccountID(a.AccountID) {
			return fmt.Errorf("account %d: invalid id %q", i+1, a.AccountID)
		}
	}
	return nil
}

type Groups []audit.ClassificationGroup

func (Groups) Validate() error { return nil }

type AccountRequest struct {
	Code           string          `json:"code"`
	AccountName    string          `json:"accountName"`
	Classification string          `json:"classification,omitempty"`
	CurrentYear    decimal.Decimal `json:"currentYear"`
	PriorYear      decimal.Decimal `json:"priorYear"`
}

// CreateTrialBalanceRequest is the body of POST /audit-cycles/{cycleId}/trial-balances.
type CreateTrialBalanceRequest struct {
	Name     string           `json:"name"`
	Accounts []AccountRequest `json:"accounts"`
}

func (r CreateTrialBalanceRequest) Validate() error {
	if r.Name == "" {
		return errors.New("trial balance name is required")
	}
	seen := make(map[string]bool)
	for i, a := range r.Accounts {
		if a.Code == "" {
			return fmt.Errorf("account %d: code is required", i+1)
		}
		if seen[a.Code] {
			return fmt.Errorf("account %d: duplicate code %s", i+1, a.Code)
		}
		seen[a.Code] = true
	}
	return nil
}
