package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/auditledger/internal/audit"
)

type entryDetailLoadedMsg struct {
	entry *audit.Entry
	err   error
}

type entryDetailModel struct {
	entry   *audit.Entry
	loading bool
	err     error
	width   int
}

func (m *entryDetailModel) init(s session, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		e, err := s.client.GetEntry(context.Background(), s.cycleID, s.tbID, id)
		return entryDetailLoadedMsg{entry: e, err: err}
	}
}

func (m entryDetailModel) update(msg tea.Msg) (entryDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDetailLoadedMsg:
		m.loading = false
		m.entry = msg.entry
		m.err = msg.err
	}
	return m, nil
}

func (m *entryDetailModel) view() string {
	if m.loading {
		return "Loading entry..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.entry == nil {
		return ""
	}
	e := m.entry

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", e.Kind.Label(), e.Code)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), e.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), e.Status))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Updated:"), e.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
	b.WriteString("\n")

	b.WriteString(renderLines(e.Lines))
	b.WriteString("\n")
	b.WriteString(renderTotals(audit.ComputeTotals(e.Lines)))

	b.WriteString("\n\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}

func renderLines(lines []audit.Line) string {
	var b strings.Builder
	header := fmt.Sprintf("  %-4s %-8s %-26s %15s %15s  %s", "TYPE", "CODE", "ACCOUNT", "DEBIT", "CREDIT", "DETAILS")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, l := range lines {
		name := l.AccountName
		if len(name) > 26 {
			name = name[:24] + ".."
		}
		debit, credit := "", ""
		direction, style := "DR", debitStyle
		if l.Type == audit.Credit {
			credit = audit.FormatAmount(l.Amount)
			direction, style = "CR", creditStyle
		} else {
			debit = audit.FormatAmount(l.Amount)
		}
		line := fmt.Sprintf("  %-4s %-8s %-26s %15s %15s  %s", direction, l.Code, name, debit, credit, l.Details)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTotals(t audit.Totals) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %-41s %15s %15s\n", "Totals", audit.FormatAmount(t.Debits), audit.FormatAmount(t.Credits)))
	if t.IsBalanced {
		b.WriteString(successStyle.Render("  BALANCED"))
	} else {
		b.WriteString(errorStyle.Render("  UNBALANCED by " + audit.FormatAmount(t.Balance)))
	}
	return b.String()
}
