package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/auditledger/internal/audit"
)

type LineRequest struct {
	TrialBalanceAccountID string          `json:"trialBalanceAccountId"`
	Type                  audit.LineType  `json:"type"`
	Value                 decimal.Decimal `json:"value"`
	Reason                string          `json:"reason"`
}

// CreateEntryRequest is the body of POST .../entries.
type CreateEntryRequest struct {
	Type        audit.Kind    `json:"type"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Status      audit.Status  `json:"status"`
	Lines       []LineRequest `json:"lines"`
}

// UpdateEntryRequest is the body of PUT .../entries/{id}. Lines cannot be
// changed after creation, so the type has no field for them.
type UpdateEntryRequest struct {
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Status      audit.Status `json:"status"`
}

func NewCreateEntryRequest(e *audit.Entry, status audit.Status) CreateEntryRequest {
	req := CreateEntryRequest{
		Type:        e.Kind,
		Code:        e.Code,
		Description: e.Description,
		Status:      status,
		Lines:       make([]LineRequest, len(e.Lines)),
	}
	for i, l := range e.Lines {
		req.Lines[i] = LineRequest{
			TrialBalanceAccountID: l.AccountID,
			Type:                  l.Type,
			Value:                 l.Amount,
			Reason:                l.Details,
		}
	}
	return req
}

func NewUpdateEntryRequest(e *audit.Entry, status audit.Status) UpdateEntryRequest {
	return UpdateEntryRequest{Code: e.Code, Description: e.Description, Status: status}
}

// Entry converts the request into a domain entry.
func (r CreateEntryRequest) Entry() *audit.Entry {
	e := &audit.Entry{
		Kind:        r.Type,
		Code:        r.Code,
		Description: r.Description,
		Status:      r.Status,
		Lines:       make([]audit.Line, len(r.Lines)),
	}
	for i, l := range r.Lines {
		e.Lines[i] = audit.Line{
			ID:        i + 1,
			AccountID: l.TrialBalanceAccountID,
			Type:      l.Type,
			Amount:    l.Value,
			Details:   l.Reason,
		}
	}
	return e
}

type EntryLine struct {
	ID                    string          `json:"id"`
	TrialBalanceAccountID string          `json:"trialBalanceAccountId"`
	Code                  string          `json:"code"`
	AccountName           string          `json:"accountName"`
	Type                  audit.LineType  `json:"type"`
	Value                 decimal.Decimal `json:"value"`
	Reason                string          `json:"reason"`
}

// Entry is a persisted audit entry as returned by the backend.
type Entry struct {
	ID          string       `json:"id"`
	Type        audit.Kind   `json:"type"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Status      audit.Status `json:"status"`
	Lines       []EntryLine  `json:"lines"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return errors.New("entry id is empty")
	}
	if _, err := audit.ParseKind(string(e.Type)); err != nil {
		return err
	}
	if _, err := audit.ParseStatus(string(e.Status)); err != nil {
		return err
	}
	for i, l := range e.Lines {
		if _, err := audit.ParseLineType(string(l.Type)); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

// Audit converts the wire entry into the domain model. Line ids are local
// sequence numbers starting at 1.
func (e Entry) Audit() audit.Entry {
	out := audit.Entry{
		ID:          e.ID,
		Kind:        e.Type,
		Code:        e.Code,
		Description: e.Description,
		Status:      e.Status,
		Lines:       make([]audit.Line, len(e.Lines)),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, l := range e.Lines {
		out.Lines[i] = audit.Line{
			ID:          i + 1,
			AccountID:   l.TrialBalanceAccountID,
			Code:        l.Code,
			AccountName: l.AccountName,
			Type:        l.Type,
			Amount:      l.Value,
			Details:     l.Reason,
		}
	}
	return out
}

// FromAudit converts a persisted domain entry into its wire form.
func FromAudit(e audit.Entry) Entry {
	out := Entry{
		ID:          e.ID,
		Type:        e.Kind,
		Code:        e.Code,
		Description: e.Description,
		Status:      e.Status,
		Lines:       make([]EntryLine, len(e.Lines)),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, l := range e.Lines {
		out.Lines[i] = EntryLine{
			ID:                    strconv.Itoa(l.ID),
			TrialBalanceAccountID: l.AccountID,
			Code:                  l.Code,
			AccountName:           l.AccountName,
			Type:                  l.Type,
			Value:                 l.Amount,
			Reason:                l.Details,
		}
	}
	return out
}

type EntryList []Entry

func (l EntryList) Validate() error {
	for _, e := range l {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %q: %w", e.ID, err)
		}
	}
	return nil
}

func (l EntryList) Audit() []audit.Entry {
	out := make([]audit.Entry, len(l))
	for i, e := range l {
		out[i] = e.Audit()
	}
	return out
}
