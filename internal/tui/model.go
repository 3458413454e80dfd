// Package tui is a keyboard driven timeline browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pbaille/timeline/internal/client"
	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/printer"
	"github.com/pbaille/timeline/internal/store"
	"github.com/pbaille/timeline/internal/timeline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	timeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	enabledStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

const help = "d/→ D/← day · w/W week · m/M month · y/Y year · t today · j/k move · enter select · tab/space filters · r refresh · q quit"

type loadedMsg struct {
	date    string
	entries []domain.Entry
	err     error
}

// row is one selectable line of the day.
type row struct {
	title string
	key   string
	text  string
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	nav     *datenav.Controller
	session *store.Session
	builder *timeline.Builder

	date    time.Time
	entries []domain.Entry // last delivered for date
	view    *timeline.View
	rows    []row
	cursor  int
	filter  int
	loading bool
	err     error
	notice  string
}

// New starts the browser on date.
func New(ctx context.Context, nav *datenav.Controller, session *store.Session, date time.Time) *Model {
	return &Model{
		ctx:     ctx,
		nav:     nav,
		session: session,
		builder: timeline.NewBuilder(nav, session.Registry()),
		date:    date,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load(false)
}

func (m *Model) load(force bool) tea.Cmd {
	m.loading = true
	date := datenav.Format(m.date)
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		var (
			entries []domain.Entry
			err     error
		)
		if force {
			entries, err = session.Refresh(ctx)
		} else {
			entries, err = session.Navigate(ctx, date)
		}
		return loadedMsg{date: date, entries: entries, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.date != datenav.Format(m.date) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.entries = msg.entries
		m.rebuild(msg.entries)
		return m, nil

	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m *Model) key(k string) (tea.Model, tea.Cmd) {
	m.notice = ""
	if step, ok := datenav.KeyBindings[k]; ok {
		next, ok := m.nav.Move(m.date, step.N, step.Unit)
		if !ok {
			m.notice = "cannot go past today"
			return m, nil
		}
		return m, m.navigate(next)
	}

	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "t":
		return m, m.navigate(m.nav.Today())
	case "r":
		return m, m.load(true)
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.rows) {
			m.session.Select(m.rows[m.cursor].key)
		}
	case "esc":
		m.session.ClearSelection()
	case "tab":
		m.filter = (m.filter + 1) % len(m.session.Registry().Definitions())
	case "shift+tab":
		n := len(m.session.Registry().Definitions())
		m.filter = (m.filter + n - 1) % n
	case " ", "space":
		name := m.session.Registry().Definitions()[m.filter].Name
		if _, err := m.session.ToggleFilter(name); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.rebuild(m.entries)
	}
	return m, nil
}

// navigate moves to d. The selection goes with the old date right away.
func (m *Model) navigate(d time.Time) tea.Cmd {
	if !d.Equal(m.date) {
		m.session.ClearSelection()
		m.cursor = 0
		m.entries = nil
	}
	m.date = d
	return m.load(false)
}

func (m *Model) rebuild(entries []domain.Entry) {
	m.view = m.builder.Build(timeline.Input{
		Date:    m.date,
		Entries: entries,
		Status:  m.session.Status(),
		Enabled: m.session.EnabledFilters(),
	})
	m.rows = m.rows[:0]
	for _, b := range m.view.Buckets {
		for i, it := range b.Items {
			r := row{key: it.Key()}
			if i == 0 {
				r.title = b.Title
			}
			if it.Gallery != nil {
				r.text = fmt.Sprintf("gallery of %d", len(it.Gallery))
			} else {
				r.text = string(it.Renderer) + ": " + printer.Summary(it.Entry)
			}
			m.rows = append(m.rows, r)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// Date is the day on screen.
func (m *Model) Date() time.Time { return m.date }

func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.date.Format("January 2, 2006")))
	sb.WriteString(" ")
	sb.WriteString(subtitleStyle.Render(m.date.Weekday().String() + ", " + m.nav.Relative(m.date)))
	sb.WriteString("\n\n")

	switch {
	case m.loading:
		sb.WriteString(subtitleStyle.Render("loading..."))
		sb.WriteString("\n")
	case client.IsAuthRequired(m.err):
		sb.WriteString(errorStyle.Render("authentication required: set a backend token"))
		sb.WriteString("\n")
	case len(m.rows) == 0:
		sb.WriteString(subtitleStyle.Render("nothing on this day"))
		sb.WriteString("\n")
	}

	if !m.loading {
		selected := m.session.Selected()
		width := 0
		for _, r := range m.rows {
			width = max(width, len(r.title))
		}
		for i, r := range m.rows {
			line := r.text
			if r.key == selected {
				line = selectedStyle.Render("» " + line)
			}
			if i == m.cursor {
				line = cursorStyle.Render(line)
			}
			sb.WriteString(timeStyle.Render(fmt.Sprintf("%*s", width, r.title)))
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if m.view != nil && len(m.view.Transactions) > 0 {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf("%d transactions, income %s, expenses %s\n",
				len(m.view.Transactions), printer.Money(m.view.Totals.Income), printer.Money(m.view.Totals.Expenses)))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.filterBar())
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(errorStyle.Render(m.notice))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

func (m *Model) filterBar() string {
	enabled := m.session.EnabledFilters()
	var parts []string
	for i, d := range m.session.Registry().Definitions() {
		name := d.Name
		if enabled.Has(name) {
			name = enabledStyle.Render(name)
		}
		if i == m.filter {
			name = cursorStyle.Render(name)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

// Run starts the browser on the terminal.
func Run(ctx context.Context, nav *datenav.Controller, session *store.Session, date time.Time) error {
	_, err := tea.NewProgram(New(ctx, nav, session, date), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
