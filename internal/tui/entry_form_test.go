package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/auditledger/internal/audit"
)

var formAccounts = []audit.TrialBalanceAccount{
	{AccountID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Code: "1010", AccountName: "Cash", Classification: "Assets"},
	{AccountID: "16fd2706-8baf-433b-82eb-8c7fada847da", Code: "4090", AccountName: "Fee Income", Classification: "Revenue"},
}

func press(m entryFormModel, keys ...string) (entryFormModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.update(msg, session{})
	}
	return m, cmd
}

func formAtConfirm(t *testing.T, debit, credit string) entryFormModel {
	t.Helper()
	m := newEntryForm(audit.KindAdjustment, formAccounts)
	m.codeInput.SetValue("AA1")
	m.step = formStepConfirm

	l := m.builder.AddLine(formAccounts[0])
	m.builder.UpdateLine(l.ID, audit.FieldAmount, debit)
	l = m.builder.AddLine(formAccounts[1])
	m.builder.UpdateLine(l.ID, audit.FieldType, string(audit.Credit))
	m.builder.UpdateLine(l.ID, audit.FieldAmount, credit)
	return m
}

func TestEntryFormWalksThroughSteps(t *testing.T) {
	m := newEntryForm("", formAccounts)
	assert.Equal(t, audit.KindAdjustment, m.kind)

	m, cmd := press(m, "down", "enter")
	assert.Equal(t, formStepCode, m.step)
	assert.Equal(t, audit.KindReclassification, m.kind)
	assert.NotNil(t, cmd, "entering the code step should ask for a suggested code")

	m, _ = press(m, "RC9", "enter", "move fees", "enter")
	assert.Equal(t, formStepAccount, m.step)

	// Debit 1010
	m, _ = press(m, "1010", "enter", "enter", "250", "enter", "enter")
	assert.Equal(t, formStepMore, m.step)
	assert.Equal(t, 1, m.builder.Len())

	// Credit 4090
	m, _ = press(m, "enter", "4090", "enter", "down", "enter", "250", "enter", "reclass", "enter")
	require.Equal(t, 2, m.builder.Len())

	m, _ = press(m, "down", "enter")
	assert.Equal(t, formStepConfirm, m.step)

	e := m.entry(audit.StatusPosted)
	assert.Equal(t, "RC9", e.Code)
	assert.Equal(t, "move fees", e.Description)
	assert.Equal(t, audit.Credit, e.Lines[1].Type)
	assert.Equal(t, "reclass", e.Lines[1].Details)
	assert.True(t, e.Totals().IsBalanced)

	m, cmd = press(m, "p")
	assert.NoError(t, m.err)
	assert.True(t, m.submitting)
	assert.NotNil(t, cmd)
}

func TestEntryFormRejectsUnknownAccountAndBadAmount(t *testing.T) {
	m := newEntryForm(audit.KindAdjustment, formAccounts)
	m.startLine()

	m, _ = press(m, "9999", "enter")
	assert.Equal(t, formStepAccount, m.step)
	assert.Error(t, m.err)

	m.accountInput.SetValue("")
	m, _ = press(m, "1010", "enter", "enter", "0", "enter")
	assert.Equal(t, formStepAmount, m.step)
	assert.ErrorIs(t, m.err, audit.ErrNonPositiveAmount)
}

func TestEntryFormBlocksUnbalancedPost(t *testing.T) {
	m := formAtConfirm(t, "100", "90")

	m, cmd := press(m, "p")
	assert.Nil(t, cmd)
	assert.False(t, m.submitting)
	assert.ErrorIs(t, m.err, audit.ErrUnbalancedEntry)

	// Drafts may be unbalanced.
	m, cmd = press(m, "d")
	assert.NotNil(t, cmd)
	assert.True(t, m.submitting)
	assert.NoError(t, m.err)

	_, cmd = press(m, "d")
	assert.Nil(t, cmd, "no second submit while one is in flight")
}

func TestEntryFormRemovesLastLine(t *testing.T) {
	m := formAtConfirm(t, "100", "100")
	m.step = formStepMore

	m, _ = press(m, "x")
	require.Equal(t, 1, m.builder.Len())
	assert.Equal(t, "1010", m.builder.Lines()[0].Code)
	assert.Equal(t, formStepMore, m.step)

	m, _ = press(m, "x")
	assert.Equal(t, 0, m.builder.Len())
	assert.Equal(t, formStepAccount, m.step)
}

func TestEntryFormSuggestedCode(t *testing.T) {
	m := newEntryForm(audit.KindAdjustment, formAccounts)

	m, _ = m.update(nextCodeMsg{kind: audit.KindAdjustment, code: "AA4"}, session{})
	assert.Equal(t, "AA4", m.codeInput.Value())

	m, _ = m.update(nextCodeMsg{kind: audit.KindAdjustment, code: "AA5"}, session{})
	assert.Equal(t, "AA4", m.codeInput.Value(), "a suggestion never replaces existing input")

	m.codeInput.SetValue("")
	m, _ = m.update(nextCodeMsg{kind: audit.KindReclassification, code: "RC1"}, session{})
	assert.Empty(t, m.codeInput.Value(), "stale suggestion for another kind")
}

func TestEntryFormSaveResult(t *testing.T) {
	m := formAtConfirm(t, "100", "100")
	m.submitting = true

	m, _ = m.update(entrySavedMsg{err: assert.AnError}, session{})
	assert.False(t, m.submitting)
	assert.False(t, m.done)
	assert.Equal(t, assert.AnError, m.err)

	saved := &audit.Entry{Kind: audit.KindAdjustment, Code: "AA1", Status: audit.StatusPosted}
	m, _ = m.update(entrySavedMsg{entry: saved}, session{})
	assert.True(t, m.done)
	assert.Equal(t, "Adjustment AA1 saved as posted", m.statusMsg)
}

func TestResolveAccount(t *testing.T) {
	m := newEntryForm(audit.KindAdjustment, formAccounts)

	a, ok := m.resolveAccount(" 4090 ")
	require.True(t, ok)
	assert.Equal(t, "Fee Income", a.AccountName)

	a, ok = m.resolveAccount("7C9E6679-7425-40DE-944B-E07FC1F90AE7")
	require.True(t, ok)
	assert.Equal(t, "1010", a.Code)

	_, ok = m.resolveAccount("nope")
	assert.False(t, ok)
}

func TestEntryFormTotalsFollowLines(t *testing.T) {
	m := formAtConfirm(t, "100.25", "100")
	tot := m.builder.Totals()
	assert.True(t, tot.Debits.Equal(decimal.RequireFromString("100.25")))
	assert.False(t, tot.IsBalanced)
	assert.Contains(t, m.view(), "UNBALANCED")
}
