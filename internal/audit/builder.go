package audit

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineField names a mutable field of a Line.
type LineField string

const (
	FieldType    LineField = "type"
	FieldAmount  LineField = "amount"
	FieldDetails LineField = "details"
)

// Builder holds a draft entry's ordered lines while they are edited.
// It performs no validation; that is left to ComputeTotals and Validate.
type Builder struct {
	lines  []Line
	nextID int
}

func NewBuilder() *Builder {
	return &Builder{nextID: 1}
}

// Load replaces the builder's lines with those of a fetched entry, assigning
// fresh local ids.
func (b *Builder) Load(lines []Line) {
	b.lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		l.ID = b.nextID
		b.nextID++
		b.lines = append(b.lines, l)
	}
}

// AddLine appends a debit line of zero against account and returns it.
func (b *Builder) AddLine(account TrialBalanceAccount) Line {
	l := Line{
		ID:          b.nextID,
		AccountID:   account.AccountID,
		Code:        account.Code,
		AccountName: account.AccountName,
		Type:        Debit,
		Amount:      decimal.Zero,
	}
	b.nextID++
	b.lines = append(b.lines, l)
	return l
}

// UpdateLine sets one field of the line with the given id. Values that do not
// parse are stored as their zero value. It reports whether the line exists.
func (b *Builder) UpdateLine(id int, field LineField, value string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	switch field {
	case FieldType:
		if t, err := ParseLineType(value); err == nil {
			b.lines[i].Type = t
		}
	case FieldAmount:
		amt, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			amt = decimal.Zero
		}
		b.lines[i].Amount = amt
	case FieldDetails:
		b.lines[i].Details = value
	default:
		return false
	}
	return true
}

// SetAccount rebinds the line with the given id to another account.
func (b *Builder) SetAccount(id int, account TrialBalanceAccount) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.lines[i].AccountID = account.AccountID
	b.lines[i].Code = account.Code
	b.lines[i].AccountName = account.AccountName
	return true
}

// RemoveLine deletes the line with the given id.
func (b *Builder) RemoveLine(id int) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.lines = append(b.lines[:i], b.lines[i+1:]...)
	return true
}

// Lines returns a copy of the current lines in order.
func (b *Builder) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Builder) Len() int {
	return len(b.lines)
}

func (b *Builder) Totals() Totals {
	return ComputeTotals(b.lines)
}

func (b *Builder) index(id int) int {
	for i := range b.lines {
		if b.lines[i].ID == id {
			return i
		}
	}
	return -1
}
