package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/auditledger/internal/audit"
)

// classificationsModel groups the loaded trial balance by classification.
// Groups are recomputed whenever a new trial balance arrives.
type classificationsModel struct {
	accounts []audit.TrialBalanceAccount
	groups   []audit.ClassificationGroup
	cursor   int
	expanded map[string]bool
	err      error
	width    int
	height   int
}

func (m classificationsModel) update(msg tea.Msg) (classificationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trialBalanceLoadedMsg:
		m.err = msg.err
		if msg.tb != nil {
			m.accounts = msg.tb.Accounts
			m.groups = audit.ExtractGroups(msg.tb.Accounts)
		}
		if m.cursor >= len(m.groups) {
			m.cursor = max(len(m.groups)-1, 0)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.groups)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if m.cursor < len(m.groups) {
				if m.expanded == nil {
					m.expanded = make(map[string]bool)
				}
				id := m.groups[m.cursor].ID
				m.expanded[id] = !m.expanded[id]
			}
		}
	}
	return m, nil
}

func (m *classificationsModel) view() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.groups) == 0 {
		return dimStyle.Render("No accounts loaded.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Classifications"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-34s %15s %15s %15s %15s", "GROUP", "CURRENT", "RECLASS", "ADJUST", "FINAL")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, g := range m.groups {
		marker := "+"
		if m.expanded[g.ID] {
			marker = "-"
		}
		label := fmt.Sprintf("%s %s (%d)", marker, g.Label, len(g.MemberAccountCodes))
		line := fmt.Sprintf("  %-34s %15s %15s %15s %15s", label,
			audit.FormatAmount(g.Totals.CurrentYear),
			dashZero(g.Totals.ReClassification),
			dashZero(g.Totals.Adjustments),
			audit.FormatAmount(g.Totals.FinalBalance))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")

		if !m.expanded[g.ID] {
			continue
		}
		for _, a := range audit.RowsForGroup(m.accounts, g) {
			name := a.Code + " " + a.AccountName
			if len(name) > 30 {
				name = name[:28] + ".."
			}
			b.WriteString(dimStyle.Render(fmt.Sprintf("      %-30s %15s %15s %15s %15s", name,
				audit.FormatAmount(a.CurrentYear),
				dashZero(a.ReClassification),
				dashZero(a.Adjustments),
				audit.FormatAmount(a.FinalBalance))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("  enter: expand/collapse group"))
	return b.String()
}
