package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/auditledger/internal/audit"
)

type formStep int

const (
	formStepKind formStep = iota
	formStepCode
	formStepDescription
	formStepAccount
	formStepType
	formStepAmount
	formStepDetails
	formStepMore
	formStepConfirm
)

type nextCodeMsg struct {
	kind audit.Kind
	code string
}

type entrySavedMsg struct {
	entry *audit.Entry
	err   error
}

// entryFormModel builds a new adjustment or reclassification line by line.
// Running totals are shown throughout and posting is refused until the
// lines balance.
type entryFormModel struct {
	step     formStep
	kind     audit.Kind
	builder  *audit.Builder
	accounts []audit.TrialBalanceAccount

	codeInput    textinput.Model
	descInput    textinput.Model
	accountInput textinput.Model
	amountInput  textinput.Model
	detailsInput textinput.Model

	// Line being built
	account audit.TrialBalanceAccount
	isDebit bool
	amount  string

	moreCursor int // 0 = add another, 1 = review

	submitting bool
	err        error
	done       bool
	cancelled  bool
	statusMsg  string
	width      int
}

func newEntryForm(kind audit.Kind, accounts []audit.TrialBalanceAccount) entryFormModel {
	codeInput := textinput.New()
	codeInput.Placeholder = "e.g. AA1"
	codeInput.CharLimit = 20

	descInput := textinput.New()
	descInput.Placeholder = "e.g. Accrue unbilled audit fees"
	descInput.CharLimit = 200

	acctInput := textinput.New()
	acctInput.Placeholder = "account code, e.g. 1010"
	acctInput.CharLimit = 40

	amtInput := textinput.New()
	amtInput.Placeholder = "e.g. 1,250.00"
	amtInput.CharLimit = 24

	detailsInput := textinput.New()
	detailsInput.Placeholder = "optional"
	detailsInput.CharLimit = 200

	if kind == "" {
		kind = audit.KindAdjustment
	}
	return entryFormModel{
		step:         formStepKind,
		kind:         kind,
		builder:      audit.NewBuilder(),
		accounts:     accounts,
		codeInput:    codeInput,
		descInput:    descInput,
		accountInput: acctInput,
		amountInput:  amtInput,
		detailsInput: detailsInput,
		isDebit:      true,
	}
}

// suggestCode asks the backend for the next free code of the chosen kind.
func (m *entryFormModel) suggestCode(s session) tea.Cmd {
	kind := m.kind
	return func() tea.Msg {
		return nextCodeMsg{kind: kind, code: s.client.NextCode(context.Background(), s.cycleID, s.tbID, kind)}
	}
}

func (m entryFormModel) update(msg tea.Msg, s session) (entryFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case nextCodeMsg:
		// Only a suggestion: never overwrite what the user typed.
		if msg.kind == m.kind && m.codeInput.Value() == "" {
			m.codeInput.SetValue(msg.code)
			m.codeInput.CursorEnd()
		}
		return m, nil

	case entrySavedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.step = formStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("%s %s saved as %s", msg.entry.Kind.Label(), msg.entry.Code, strings.ToLower(string(msg.entry.Status)))
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case formStepKind:
			return m.updateKind(msg, s)
		case formStepCode:
			return m.updateCode(msg)
		case formStepDescription:
			return m.updateDescription(msg)
		case formStepAccount:
			return m.updateAccount(msg)
		case formStepType:
			return m.updateType(msg)
		case formStepAmount:
			return m.updateAmount(msg)
		case formStepDetails:
			return m.updateDetails(msg)
		case formStepMore:
			return m.updateMore(msg)
		case formStepConfirm:
			return m.updateConfirm(msg, s)
		}
	}
	return m, nil
}

func (m entryFormModel) updateKind(msg tea.KeyMsg, s session) (entryFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		if m.kind == audit.KindAdjustment {
			m.kind = audit.KindReclassification
		} else {
			m.kind = audit.KindAdjustment
		}
	case key.Matches(msg, keys.Enter):
		m.step = formStepCode
		m.codeInput.SetValue("")
		m.codeInput.Focus()
		return m, m.suggestCode(s)
	}
	return m, nil
}

func (m entryFormModel) updateCode(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if strings.TrimSpace(m.codeInput.Value()) == "" {
			m.err = audit.ErrMissingCode
			return m, nil
		}
		m.err = nil
		m.step = formStepDescription
		m.codeInput.Blur()
		m.descInput.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

func (m entryFormModel) updateDescription(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		m.err = nil
		m.descInput.Blur()
		m.startLine()
		return m, nil
	}
	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

func (m *entryFormModel) startLine() {
	m.step = formStepAccount
	m.accountInput.SetValue("")
	m.accountInput.Focus()
	m.isDebit = true
}

// resolveAccount finds an account by code or id.
func (m *entryFormModel) resolveAccount(ref string) (audit.TrialBalanceAccount, bool) {
	ref = strings.TrimSpace(ref)
	for _, a := range m.accounts {
		if a.Code == ref || strings.EqualFold(a.AccountID, ref) {
			return a, true
		}
	}
	return audit.TrialBalanceAccount{}, false
}

func (m entryFormModel) updateAccount(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		a, ok := m.resolveAccount(m.accountInput.Value())
		if !ok {
			m.err = fmt.Errorf("no account %q in this trial balance", m.accountInput.Value())
			return m, nil
		}
		m.account = a
		m.err = nil
		m.accountInput.Blur()
		m.step = formStepType
		return m, nil
	}
	var cmd tea.Cmd
	m.accountInput, cmd = m.accountInput.Update(msg)
	return m, cmd
}

func (m entryFormModel) updateType(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.isDebit = !m.isDebit
	case key.Matches(msg, keys.Enter):
		m.err = nil
		m.step = formStepAmount
		m.amountInput.SetValue("")
		m.amountInput.Focus()
	}
	return m, nil
}

func (m entryFormModel) updateAmount(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		amt, err := audit.ParseAmount(m.amountInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid amount: %v", err)
			return m, nil
		}
		if !amt.IsPositive() {
			m.err = audit.ErrNonPositiveAmount
			return m, nil
		}
		m.amount = amt.String()
		m.err = nil
		m.amountInput.Blur()
		m.step = formStepDetails
		m.detailsInput.SetValue("")
		m.detailsInput.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

func (m entryFormModel) updateDetails(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		m.commitLine()
		m.detailsInput.Blur()
		m.moreCursor = 0
		m.step = formStepMore
		return m, nil
	}
	var cmd tea.Cmd
	m.detailsInput, cmd = m.detailsInput.Update(msg)
	return m, cmd
}

// commitLine adds the line being built to the builder.
func (m *entryFormModel) commitLine() {
	l := m.builder.AddLine(m.account)
	lineType := audit.Debit
	if !m.isDebit {
		lineType = audit.Credit
	}
	m.builder.UpdateLine(l.ID, audit.FieldType, string(lineType))
	m.builder.UpdateLine(l.ID, audit.FieldAmount, m.amount)
	m.builder.UpdateLine(l.ID, audit.FieldDetails, m.detailsInput.Value())
}

func (m entryFormModel) updateMore(msg tea.KeyMsg) (entryFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.moreCursor = 1 - m.moreCursor
	case msg.String() == "x":
		lines := m.builder.Lines()
		if len(lines) > 0 {
			m.builder.RemoveLine(lines[len(lines)-1].ID)
		}
		if m.builder.Len() == 0 {
			m.startLine()
		}
	case key.Matches(msg, keys.Enter):
		m.err = nil
		if m.moreCursor == 0 {
			m.startLine()
		} else {
			m.step = formStepConfirm
		}
	}
	return m, nil
}

func (m entryFormModel) updateConfirm(msg tea.KeyMsg, s session) (entryFormModel, tea.Cmd) {
	switch msg.String() {
	case "d", "D":
		return m.submit(s, audit.StatusDraft)
	case "p", "P":
		if !audit.CanPost(m.builder.Lines()) {
			m.err = audit.ErrUnbalancedEntry
			return m, nil
		}
		return m.submit(s, audit.StatusPosted)
	case "b", "B":
		m.err = nil
		m.step = formStepMore
	}
	return m, nil
}

func (m entryFormModel) entry(status audit.Status) *audit.Entry {
	return &audit.Entry{
		Kind:        m.kind,
		Code:        strings.TrimSpace(m.codeInput.Value()),
		Description: m.descInput.Value(),
		Status:      status,
		Lines:       m.builder.Lines(),
	}
}

func (m entryFormModel) submit(s session, status audit.Status) (entryFormModel, tea.Cmd) {
	e := m.entry(status)
	if err := audit.Validate(e, status); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.submitting = true
	return m, func() tea.Msg {
		created, err := s.client.CreateEntry(context.Background(), s.cycleID, s.tbID, e, status)
		return entrySavedMsg{entry: created, err: err}
	}
}

func (m *entryFormModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New " + m.kind.Label()))
	b.WriteString("\n\n")

	if m.step > formStepCode {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Code:"), m.codeInput.Value()))
	}
	if m.step > formStepDescription {
		b.WriteString(fmt.Sprintf("%s %s\n\n", labelStyle.Render("Description:"), m.descInput.Value()))
	}

	if m.builder.Len() > 0 {
		b.WriteString(renderLines(m.builder.Lines()))
		b.WriteString(renderTotals(m.builder.Totals()))
		b.WriteString("\n\n")
	}

	switch m.step {
	case formStepKind:
		b.WriteString("  Select entry type:\n\n")
		for _, k := range audit.AllKinds {
			label := fmt.Sprintf("%s (%s)", k.Label(), k.Prefix())
			if k == m.kind {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString("    " + label + "\n")
			}
		}

	case formStepCode:
		b.WriteString("  Entry code (suggested, editable):\n\n")
		b.WriteString("  " + m.codeInput.View() + "\n")

	case formStepDescription:
		b.WriteString("  Description:\n\n")
		b.WriteString("  " + m.descInput.View() + "\n")

	case formStepAccount:
		b.WriteString(fmt.Sprintf("  Line #%d: account:\n\n", m.builder.Len()+1))
		b.WriteString("  " + m.accountInput.View() + "\n")

		if len(m.accounts) > 0 {
			b.WriteString("\n" + dimStyle.Render("  Trial balance accounts:") + "\n")
			for i, a := range m.accounts {
				if i == 12 {
					b.WriteString(dimStyle.Render(fmt.Sprintf("    ... %d more", len(m.accounts)-i)) + "\n")
					break
				}
				name := a.AccountName
				if len(name) > 28 {
					name = name[:26] + ".."
				}
				b.WriteString(dimStyle.Render(fmt.Sprintf("    %-8s %-28s %15s", a.Code, name, audit.FormatAmount(a.FinalBalance))) + "\n")
			}
		}

	case formStepType:
		b.WriteString(fmt.Sprintf("  Account: %s %s\n", m.account.Code, m.account.AccountName))
		b.WriteString("  Select line type:\n\n")
		if m.isDebit {
			b.WriteString(selectedStyle.Render("  > Debit (DR)") + "\n")
			b.WriteString("    Credit (CR)\n")
		} else {
			b.WriteString("    Debit (DR)\n")
			b.WriteString(selectedStyle.Render("  > Credit (CR)") + "\n")
		}

	case formStepAmount:
		typ := "Debit"
		if !m.isDebit {
			typ = "Credit"
		}
		b.WriteString(fmt.Sprintf("  Account: %s | Type: %s\n", m.account.Code, typ))
		b.WriteString("  Amount:\n\n")
		b.WriteString("  " + m.amountInput.View() + "\n")

	case formStepDetails:
		b.WriteString(fmt.Sprintf("  Account: %s | Amount: %s\n", m.account.Code, m.amount))
		b.WriteString("  Details:\n\n")
		b.WriteString("  " + m.detailsInput.View() + "\n")

	case formStepMore:
		options := []string{"Add another line", "Review and save"}
		b.WriteString("  What next? (x removes the last line)\n\n")
		for i, opt := range options {
			if i == m.moreCursor {
				b.WriteString(selectedStyle.Render("  > "+opt) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("    %s\n", opt))
			}
		}

	case formStepConfirm:
		if m.submitting {
			b.WriteString("  Saving...\n")
			break
		}
		post := "p: post"
		if !audit.CanPost(m.builder.Lines()) {
			post = dimStyle.Render("p: post (lines must balance)")
		}
		b.WriteString(fmt.Sprintf("  d: save as draft   %s   b: back\n", post))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ESC to cancel"))
	return b.String()
}
