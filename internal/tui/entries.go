package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/auditledger/internal/audit"
)

type entriesLoadedMsg struct {
	entries []audit.Entry
	err     error
}

type entryDeleteConfirmedMsg struct {
	entry audit.Entry
}

type entryPostRequestMsg struct {
	entry audit.Entry
}

type entryListModel struct {
	entries       []audit.Entry
	kind          audit.Kind // "" shows both kinds
	cursor        int
	loading       bool
	err           error
	confirmDelete bool
	width         int
	height        int
}

// visible returns the entries matching the kind toggle.
func (m *entryListModel) visible() []audit.Entry {
	if m.kind == "" {
		return m.entries
	}
	var out []audit.Entry
	for _, e := range m.entries {
		if e.Kind == m.kind {
			out = append(out, e)
		}
	}
	return out
}

func (m *entryListModel) toggleKind() {
	switch m.kind {
	case "":
		m.kind = audit.KindAdjustment
	case audit.KindAdjustment:
		m.kind = audit.KindReclassification
	default:
		m.kind = ""
	}
	m.cursor = 0
}

func (m *entryListModel) selected() (audit.Entry, bool) {
	v := m.visible()
	if m.cursor >= 0 && m.cursor < len(v) {
		return v[m.cursor], true
	}
	return audit.Entry{}, false
}

func (m entryListModel) update(msg tea.Msg) (entryListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.err = msg.err
		if n := len(m.visible()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() == "y" || msg.String() == "Y" {
				if e, ok := m.selected(); ok {
					return m, func() tea.Msg { return entryDeleteConfirmedMsg{entry: e} }
				}
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Filter):
			m.toggleKind()
		case key.Matches(msg, keys.Delete):
			if _, ok := m.selected(); ok {
				m.confirmDelete = true
			}
		case key.Matches(msg, keys.Post):
			if e, ok := m.selected(); ok && e.Status == audit.StatusDraft {
				return m, func() tea.Msg { return entryPostRequestMsg{entry: e} }
			}
		}
	}
	return m, nil
}

func (m *entryListModel) view() string {
	if m.loading {
		return "Loading entries..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder

	title := "Adjustments & Reclassifications"
	if m.kind != "" {
		title = m.kind.Label() + "s"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	entries := m.visible()
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("No entries found. Press n to create one."))
		return b.String()
	}

	header := fmt.Sprintf("  %-8s %-8s %-6s %15s %15s  %s", "CODE", "STATUS", "LINES", "DEBITS", "CREDITS", "DESCRIPTION")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 6
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(entries) && i < start+maxRows; i++ {
		e := entries[i]
		desc := e.Description
		if len(desc) > 30 {
			desc = desc[:28] + ".."
		}
		t := e.Totals()

		line := fmt.Sprintf("  %-8s %-8s %-6d %15s %15s  %s",
			e.Code,
			e.Status,
			len(e.Lines),
			audit.FormatAmount(t.Debits),
			audit.FormatAmount(t.Credits),
			desc,
		)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case e.Status == audit.StatusDraft:
			b.WriteString(draftStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.confirmDelete {
		e, _ := m.selected()
		prompt := fmt.Sprintf("\n  Delete %s?", e.Code)
		if e.Status == audit.StatusPosted {
			prompt += " Its effect on the trial balance will be reversed."
		}
		b.WriteString(errorStyle.Render(prompt + " (y/n)"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n  %d entries", len(entries)))
	return b.String()
}
