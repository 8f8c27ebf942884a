package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
	"github.com/simonvc/auditledger/internal/client"
	"github.com/simonvc/auditledger/internal/notify"
)

// toastTTL is how long a notification stays on screen.
const toastTTL = 6 * time.Second

// session identifies the trial balance the UI is working on.
type session struct {
	client  *client.Client
	cycleID string
	tbID    string
}

type mode int

const (
	modeEntries mode = iota
	modeEntryDetail
	modeTrialBalance
	modeClassifications
	modeEntryForm
)

var tabModes = []mode{modeEntries, modeTrialBalance, modeClassifications}

func tabLabel(m mode) string {
	switch m {
	case modeEntries:
		return "Entries"
	case modeTrialBalance:
		return "Trial Balance"
	case modeClassifications:
		return "Classifications"
	default:
		return ""
	}
}

type notificationMsg struct {
	n api.Notification
}

type snapshotLoadedMsg struct {
	snap *client.Snapshot
	err  error
}

type toastExpiredMsg struct {
	id string
}

type entryMutatedMsg struct {
	verb  string
	entry audit.Entry
	err   error
}

type toast struct {
	id   string
	text string
}

type App struct {
	session       session
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	notes       chan api.Notification
	unsubscribe func()
	toasts      []toast

	entryList       entryListModel
	entryDetail     entryDetailModel
	trialBalance    trialBalanceModel
	classifications classificationsModel
	entryForm       entryFormModel
}

// NewApp builds the UI for one trial balance. bus may be nil, in which case
// no notifications are shown.
func NewApp(c *client.Client, bus *notify.Bus, cycleID, tbID string) *App {
	app := &App{
		session: session{client: c, cycleID: cycleID, tbID: tbID},
		mode:    modeEntries,
		notes:   make(chan api.Notification, 16),
	}
	if bus != nil {
		app.unsubscribe = bus.Subscribe(func(n api.Notification) {
			select {
			case app.notes <- n:
			default:
			}
		})
	}
	return app
}

// Close releases the notification subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *App) waitForNotification() tea.Cmd {
	ch := a.notes
	return func() tea.Msg {
		return notificationMsg{n: <-ch}
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.load()}
	if a.unsubscribe != nil {
		cmds = append(cmds, a.waitForNotification())
	}
	return tea.Batch(cmds...)
}

// load fetches the trial balance and its entries together.
func (a *App) load() tea.Cmd {
	a.entryList.loading = true
	a.trialBalance.loading = true
	s := a.session
	return func() tea.Msg {
		snap, err := s.client.Snapshot(context.Background(), s.cycleID, s.tbID)
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

// reload drops cached data for the trial balance and fetches it again.
func (a *App) reload() tea.Cmd {
	s := a.session
	s.client.Cache().Invalidate(client.EntriesKey(s.cycleID, s.tbID), client.TrialBalanceKey(s.cycleID, s.tbID))
	return a.load()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.entryList.width = msg.Width
		a.entryList.height = msg.Height - 6
		a.trialBalance.width = msg.Width
		a.trialBalance.height = msg.Height - 6
		a.classifications.width = msg.Width
		a.classifications.height = msg.Height - 6
		a.entryDetail.width = msg.Width
		a.entryForm.width = msg.Width
		return a, nil

	case notificationMsg:
		a.toasts = append(a.toasts, toast{id: msg.n.ID, text: msg.n.Title})
		id := msg.n.ID
		cmds := []tea.Cmd{
			a.waitForNotification(),
			tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }),
		}
		// Someone else changed the data; the form keeps its own state.
		if a.mode != modeEntryForm {
			cmds = append(cmds, a.reload())
		}
		return a, tea.Batch(cmds...)

	case toastExpiredMsg:
		kept := a.toasts[:0]
		for _, t := range a.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		a.toasts = kept
		return a, nil

	case snapshotLoadedMsg:
		entries := entriesLoadedMsg{err: msg.err}
		tb := trialBalanceLoadedMsg{err: msg.err}
		if msg.snap != nil {
			entries.entries = msg.snap.Entries
			tb.tb = msg.snap.TrialBalance
		}
		a.entryList, _ = a.entryList.update(entries)
		a.trialBalance, _ = a.trialBalance.update(tb)
		a.classifications, _ = a.classifications.update(tb)
		return a, nil

	case entryDetailLoadedMsg:
		var cmd tea.Cmd
		a.entryDetail, cmd = a.entryDetail.update(msg)
		return a, cmd

	case entryDeleteConfirmedMsg:
		s, e := a.session, msg.entry
		return a, func() tea.Msg {
			err := s.client.DeleteEntry(context.Background(), s.cycleID, s.tbID, e.ID)
			return entryMutatedMsg{verb: "deleted", entry: e, err: err}
		}

	case entryPostRequestMsg:
		s, e := a.session, msg.entry
		return a, func() tea.Msg {
			_, err := s.client.UpdateEntry(context.Background(), s.cycleID, s.tbID, &e, audit.StatusPosted)
			return entryMutatedMsg{verb: "posted", entry: e, err: err}
		}

	case entryMutatedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.statusMsg = ""
			return a, nil
		}
		a.err = nil
		a.statusMsg = fmt.Sprintf("%s %s %s", msg.entry.Kind.Label(), msg.entry.Code, msg.verb)
		return a, a.reload()
	}

	// The form takes every message while open.
	if a.mode == modeEntryForm {
		var cmd tea.Cmd
		a.entryForm, cmd = a.entryForm.update(msg, a.session)
		if a.entryForm.done {
			a.mode = modeEntries
			a.err = nil
			a.statusMsg = a.entryForm.statusMsg
			return a, a.reload()
		}
		if a.entryForm.cancelled {
			a.mode = modeEntries
			a.statusMsg = "Entry cancelled"
		}
		return a, cmd
	}

	if a.mode == modeEntries && a.entryList.confirmDelete {
		var cmd tea.Cmd
		a.entryList, cmd = a.entryList.update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, nil

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, nil

		case key.Matches(msg, keys.Escape):
			if a.mode == modeEntryDetail {
				a.mode = modeEntries
			}
			a.err = nil
			return a, nil

		case key.Matches(msg, keys.Refresh):
			a.statusMsg = "Refreshing..."
			return a, a.reload()

		case key.Matches(msg, keys.New):
			if a.mode == modeEntries {
				var accounts []audit.TrialBalanceAccount
				if a.trialBalance.tb != nil {
					accounts = a.trialBalance.tb.Accounts
				}
				a.mode = modeEntryForm
				a.entryForm = newEntryForm(a.entryList.kind, accounts)
				a.entryForm.width = a.width
				return a, nil
			}

		case key.Matches(msg, keys.Enter):
			if a.mode == modeEntries {
				if e, ok := a.entryList.selected(); ok {
					a.mode = modeEntryDetail
					return a, a.entryDetail.init(a.session, e.ID)
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.mode {
	case modeEntries:
		a.entryList, cmd = a.entryList.update(msg)
	case modeEntryDetail:
		a.entryDetail, cmd = a.entryDetail.update(msg)
	case modeTrialBalance:
		a.trialBalance, cmd = a.trialBalance.update(msg)
	case modeClassifications:
		a.classifications, cmd = a.classifications.update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex && a.mode != modeEntryForm {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	var content string
	switch a.mode {
	case modeEntries:
		content = a.entryList.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modeTrialBalance:
		content = a.trialBalance.view()
	case modeClassifications:
		content = a.classifications.view()
	case modeEntryForm:
		content = a.entryForm.view()
	}

	var toasts string
	for _, t := range a.toasts {
		toasts += toastStyle.Render(t.text) + "\n"
	}

	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	helpText := dimStyle.Render("tab:switch  enter:open  esc:back  n:new  p:post  d:delete  f:AA/RC  r:refresh  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		toasts,
		content,
		"",
		status,
		helpText,
	)
}
