package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cash = TrialBalanceAccount{AccountID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Code: "1010", AccountName: "Cash"}
	fees = TrialBalanceAccount{AccountID: "16fd2706-8baf-433b-82eb-8c7fada847da", Code: "4090", AccountName: "Fee Income"}
)

func TestBuilder_AddLineDefaults(t *testing.T) {
	b := NewBuilder()
	l := b.AddLine(cash)

	assert.Equal(t, 1, l.ID)
	assert.Equal(t, cash.AccountID, l.AccountID)
	assert.Equal(t, "1010", l.Code)
	assert.Equal(t, "Cash", l.AccountName)
	assert.Equal(t, Debit, l.Type)
	assert.True(t, l.Amount.IsZero())
	assert.Empty(t, l.Details)
}

func TestBuilder_IDsMonotonicAfterRemove(t *testing.T) {
	b := NewBuilder()
	first := b.AddLine(cash)
	second := b.AddLine(fees)
	require.True(t, b.RemoveLine(second.ID))
	third := b.AddLine(fees)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 3, third.ID)
	assert.Equal(t, 2, b.Len())
}

func TestBuilder_UpdateLine(t *testing.T) {
	b := NewBuilder()
	l := b.AddLine(cash)

	assert.True(t, b.UpdateLine(l.ID, FieldType, "CREDIT"))
	assert.True(t, b.UpdateLine(l.ID, FieldAmount, "250.75"))
	assert.True(t, b.UpdateLine(l.ID, FieldDetails, "accrual"))

	got := b.Lines()[0]
	assert.Equal(t, Credit, got.Type)
	assert.True(t, got.Amount.Equal(dec("250.75")))
	assert.Equal(t, "accrual", got.Details)

	// Unparseable amounts are accepted as zero.
	assert.True(t, b.UpdateLine(l.ID, FieldAmount, "abc"))
	assert.True(t, b.Lines()[0].Amount.IsZero())

	assert.False(t, b.UpdateLine(99, FieldAmount, "1"))
	assert.False(t, b.RemoveLine(99))
}

func TestBuilder_SetAccount(t *testing.T) {
	b := NewBuilder()
	l := b.AddLine(cash)
	require.True(t, b.SetAccount(l.ID, fees))
	assert.Equal(t, fees.AccountID, b.Lines()[0].AccountID)
	assert.Equal(t, "Fee Income", b.Lines()[0].AccountName)
}

func TestBuilder_LinesIsCopy(t *testing.T) {
	b := NewBuilder()
	b.AddLine(cash)
	lines := b.Lines()
	lines[0].Details = "mutated"
	assert.Empty(t, b.Lines()[0].Details)
}

func TestBuilder_Load(t *testing.T) {
	b := NewBuilder()
	b.AddLine(cash)
	b.Load([]Line{
		{AccountID: cash.AccountID, Type: Debit, Amount: dec("10")},
		{AccountID: fees.AccountID, Type: Credit, Amount: dec("10")},
	})
	lines := b.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].ID)
	assert.Equal(t, 3, lines[1].ID)
	assert.True(t, b.Totals().IsBalanced)
}

func TestScenario_BalancedPosting(t *testing.T) {
	b := NewBuilder()
	a := b.AddLine(cash)
	c := b.AddLine(fees)
	b.UpdateLine(a.ID, FieldAmount, "100")
	b.UpdateLine(c.ID, FieldType, "CREDIT")
	b.UpdateLine(c.ID, FieldAmount, "100")

	tot := b.Totals()
	assert.True(t, tot.Debits.Equal(dec("100")))
	assert.True(t, tot.Credits.Equal(dec("100")))
	assert.True(t, tot.Balance.IsZero())
	assert.True(t, tot.IsBalanced)
	assert.True(t, CanPost(b.Lines()))

	e := &Entry{Kind: KindAdjustment, Code: "AA1", Status: StatusPosted, Lines: b.Lines()}
	assert.NoError(t, Validate(e, StatusPosted))
}
