package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/service"
)

// RefreshFunc loads the current status rows. It runs off the UI
// goroutine, so it may block on the store or the GitHub API.
type RefreshFunc func() ([]service.RepoStatus, error)

// statusesMsg carries the rows from one completed refresh.
type statusesMsg struct {
	statuses []service.RepoStatus
}

// refreshFailedMsg carries a refresh error. The previous rows stay on
// screen so a transient failure never blanks the dashboard.
type refreshFailedMsg struct {
	err error
}

// refreshTickMsg fires when the refresh interval elapses.
type refreshTickMsg time.Time

// Dashboard is the Bubble Tea model for the watch command. It displays
// metrics and would-be alerts; it never sends Telegram messages.
type Dashboard struct {
	refresh      RefreshFunc
	thresholds   config.Thresholds
	interval     time.Duration
	spinner      spinner.Model
	statuses     []service.RepoStatus
	err          error
	refreshing   bool
	refreshedAt  time.Time
	windowWidth  int
	windowHeight int
}

// NewDashboard creates a dashboard that reloads on every interval tick.
func NewDashboard(refresh RefreshFunc, thresholds config.Thresholds, interval time.Duration) Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Dashboard{
		refresh:    refresh,
		thresholds: thresholds,
		interval:   interval,
		spinner:    s,
		refreshing: true,
	}
}

// Init starts the spinner, the first refresh, and the tick chain.
func (m Dashboard) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.doRefresh(),
		scheduleRefresh(m.interval),
	)
}

// doRefresh runs the refresh callback and reports the outcome.
func (m Dashboard) doRefresh() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		statuses, err := refresh()
		if err != nil {
			return refreshFailedMsg{err: err}
		}
		return statusesMsg{statuses: statuses}
	}
}

// scheduleRefresh arms the next interval tick. Each tick schedules its
// successor, so exactly one tick chain is alive no matter how often the
// user forces a manual refresh.
func scheduleRefresh(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// Update handles messages.
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			m.refreshing = true
			return m, m.doRefresh()
		}

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshTickMsg:
		next := scheduleRefresh(m.interval)
		if m.refreshing {
			// Previous refresh still in flight; skip this tick.
			return m, next
		}
		m.refreshing = true
		return m, tea.Batch(m.doRefresh(), next)

	case statusesMsg:
		m.statuses = msg.statuses
		m.err = nil
		m.refreshing = false
		m.refreshedAt = time.Now()
		return m, nil

	case refreshFailedMsg:
		m.err = msg.err
		m.refreshing = false
		m.refreshedAt = time.Now()
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Dashboard) View() string {
	return renderDashboard(m)
}
