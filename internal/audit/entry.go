package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindAdjustment       Kind = "ADJUSTMENT"
	KindReclassification Kind = "RECLASSIFICATION"
)

var AllKinds = []Kind{KindAdjustment, KindReclassification}

// Prefix returns the two-letter code prefix used when numbering entries.
func (k Kind) Prefix() string {
	switch k {
	case KindAdjustment:
		return "AA"
	case KindReclassification:
		return "RC"
	default:
		return ""
	}
}

// Label returns a human-readable label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindAdjustment:
		return "Adjustment"
	case KindReclassification:
		return "Reclassification"
	default:
		return string(k)
	}
}

// ParseKind accepts the wire names as well as the short forms "adj" and "rc".
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADJUSTMENT", "ADJ", "AA":
		return KindAdjustment, nil
	case "RECLASSIFICATION", "RECLASS", "RC":
		return KindReclassification, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusPosted Status = "POSTED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusPosted:
		return StatusPosted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// CanTransition reports whether an entry may move from one status to another.
// Posting is one-directional: a posted entry can only be reversed by deletion.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusDraft || to == StatusPosted
	case StatusPosted:
		return to == StatusPosted
	default:
		return false
	}
}

type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

func ParseLineType(s string) (LineType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBIT", "DR", "D":
		return Debit, nil
	case "CREDIT", "CR", "C":
		return Credit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLineType, s)
	}
}

// Line is one debit or credit against a trial-balance account. ID is a local
// sequence number and is never sent to the server.
type Line struct {
	ID          int             `json:"-"`
	AccountID   string          `json:"accountId"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	Type        LineType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Details     string          `json:"details"`
}

// Entry is an adjustment or reclassification. ID is empty until the entry
// has been saved once.
type Entry struct {
	ID          string    `json:"id,omitempty"`
	Kind        Kind      `json:"type"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Lines       []Line    `json:"lines"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Persisted reports whether the entry has a server-assigned id.
func (e *Entry) Persisted() bool {
	return e.ID != ""
}

// Totals computes the running totals of the entry's lines.
func (e *Entry) Totals() Totals {
	return ComputeTotals(e.Lines)
}
