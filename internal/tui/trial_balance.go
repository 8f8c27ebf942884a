package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/simonvc/auditledger/internal/audit"
)

type trialBalanceLoadedMsg struct {
	tb  *audit.TrialBalance
	err error
}

type trialBalanceModel struct {
	tb      *audit.TrialBalance
	offset  int
	loading bool
	err     error
	width   int
	height  int
}

func (m trialBalanceModel) update(msg tea.Msg) (trialBalanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trialBalanceLoadedMsg:
		m.loading = false
		m.tb = msg.tb
		m.err = msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.tb != nil && m.offset < len(m.tb.Accounts)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m *trialBalanceModel) view() string {
	if m.loading {
		return "Loading trial balance..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.tb == nil {
		return dimStyle.Render("No data available.")
	}

	var b strings.Builder
	w := m.width
	if w < 60 {
		w = 100
	}

	// Flexible NAME column: fixed part is indent(4)+code(8)+5 amounts of 13 plus gaps = 84
	nameW := w - 84
	if nameW < 12 {
		nameW = 12
	}
	if nameW > 36 {
		nameW = 36
	}

	b.WriteString(titleStyle.Render(centerStr("TRIAL BALANCE: "+strings.ToUpper(m.tb.Name), w)))
	b.WriteString("\n")

	header := fmt.Sprintf("    %-8s %-*s %13s %13s %13s %13s %13s", "CODE", nameW, "ACCOUNT", "PRIOR", "CURRENT", "RECLASS", "ADJUST", "FINAL")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 8
	if maxRows < 1 {
		maxRows = 15
	}

	var total audit.GroupTotals
	for i, a := range m.tb.Accounts {
		total.PriorYear = total.PriorYear.Add(a.PriorYear)
		total.CurrentYear = total.CurrentYear.Add(a.CurrentYear)
		total.ReClassification = total.ReClassification.Add(a.ReClassification)
		total.Adjustments = total.Adjustments.Add(a.Adjustments)
		total.FinalBalance = total.FinalBalance.Add(a.FinalBalance)

		if i < m.offset || i >= m.offset+maxRows {
			continue
		}
		name := a.AccountName
		if len(name) > nameW {
			name = name[:nameW-2] + ".."
		}
		line := fmt.Sprintf("    %-8s %-*s %13s %13s %13s %13s %13s", a.Code, nameW, name,
			audit.FormatAmount(a.PriorYear),
			audit.FormatAmount(a.CurrentYear),
			dashZero(a.ReClassification),
			dashZero(a.Adjustments),
			audit.FormatAmount(a.FinalBalance))
		if !a.Adjustments.IsZero() || !a.ReClassification.IsZero() {
			b.WriteString(draftStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %13s %13s %13s %13s %13s\n", nameW+9, "Totals",
		audit.FormatAmount(total.PriorYear),
		audit.FormatAmount(total.CurrentYear),
		audit.FormatAmount(total.ReClassification),
		audit.FormatAmount(total.Adjustments),
		audit.FormatAmount(total.FinalBalance)))

	b.WriteString("\n")
	if total.FinalBalance.Abs().LessThan(audit.Tolerance) {
		b.WriteString(successStyle.Render("    [BALANCED]"))
	} else {
		b.WriteString(errorStyle.Render("    [OUT OF BALANCE BY " + audit.FormatAmount(total.FinalBalance) + "]"))
	}
	return b.String()
}

func dashZero(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return audit.FormatAmount(d)
}

func centerStr(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
