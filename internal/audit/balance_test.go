package audit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(t LineType, amount string) Line {
	return Line{AccountID: "0b6f8c2e-4a1d-4c3b-9e7f-1a2b3c4d5e6f", Type: t, Amount: dec(amount)}
}

func TestComputeTotals_Empty(t *testing.T) {
	tot := ComputeTotals(nil)
	assert.True(t, tot.Debits.IsZero())
	assert.True(t, tot.Credits.IsZero())
	assert.True(t, tot.Balance.IsZero())
	assert.True(t, tot.IsBalanced)
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	lines := []Line{
		line(Debit, "100.10"),
		line(Credit, "40.05"),
		line(Debit, "0.01"),
		line(Credit, "60.00"),
		line(Debit, "12.34"),
	}
	want := ComputeTotals(lines)

	perms := [][]int{{4, 3, 2, 1, 0}, {1, 0, 3, 2, 4}, {2, 4, 0, 1, 3}}
	for _, p := range perms {
		shuffled := make([]Line, len(lines))
		for i, j := range p {
			shuffled[i] = lines[j]
		}
		got := ComputeTotals(shuffled)
		assert.True(t, want.Debits.Equal(got.Debits))
		assert.True(t, want.Credits.Equal(got.Credits))
		assert.True(t, want.Balance.Equal(got.Balance))
		assert.Equal(t, want.IsBalanced, got.IsBalanced)
	}
}

func TestComputeTotals_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		debit    string
		credit   string
		balanced bool
	}{
		{"exact", "100.00", "100.00", true},
		{"half cent", "100.00", "100.005", true},
		{"two cents", "100.00", "100.02", false},
		{"one cent is not balanced", "100.00", "100.01", false},
		{"debit heavy", "500", "450", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tot := ComputeTotals([]Line{line(Debit, tt.debit), line(Credit, tt.credit)})
			assert.Equal(t, tt.balanced, tot.IsBalanced)
			assert.True(t, tot.Balance.Equal(dec(tt.debit).Sub(dec(tt.credit)).Abs()))
		})
	}
}

func TestCanPost(t *testing.T) {
	assert.True(t, CanPost([]Line{line(Debit, "100"), line(Credit, "100")}))
	assert.False(t, CanPost([]Line{line(Debit, "100"), line(Credit, "90")}))
	assert.False(t, CanPost([]Line{line(Debit, "0"), line(Credit, "0")}), "zero amounts")
	assert.False(t, CanPost([]Line{line(Debit, "100"), line(Credit, "100"), line(Debit, "0")}))
}

func TestCanSave(t *testing.T) {
	e := &Entry{Lines: []Line{line(Debit, "500"), line(Credit, "450")}}
	assert.True(t, CanSave(e, StatusDraft))
	assert.False(t, CanSave(e, StatusPosted))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusDraft))
	assert.True(t, CanTransition(StatusDraft, StatusPosted))
	assert.True(t, CanTransition(StatusPosted, StatusPosted))
	assert.False(t, CanTransition(StatusPosted, StatusDraft))
}
