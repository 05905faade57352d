package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tower/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []worldItem
	index   map[string]int
	width   int
	done    bool
}

type worldItem struct {
	path       string
	status     driver.Status
	calls      int
	mismatches int
	cached     bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders batch resolution
// progress. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]worldItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, worldItem{path: file, status: driver.StatusQueued})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d worlds)", m.title, m.finished(), len(m.items))
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	const countWidth = 16
	nameWidth := max(m.width-statusWidth-countWidth-6, 20)

	for _, item := range m.items {
		label := statusLabel(item)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, label))
		line := fmt.Sprintf("  %s %s", statusStyled, runewidth.FillRight(truncate(item.path, nameWidth), nameWidth))
		if item.status.Terminal() {
			line += " " + countLabel(item)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.status = ev.Status
	if ev.Calls > 0 {
		item.calls = ev.Calls
	}
	if ev.Status.Terminal() {
		item.mismatches = ev.Mismatches
		item.cached = ev.Cached
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.status.Terminal() {
			n++
		}
	}
	return n
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += progressFromStatus(item.status)
	}
	return total / float64(len(m.items))
}

func progressFromStatus(s driver.Status) float64 {
	switch s {
	case driver.StatusLoading:
		return 0.2
	case driver.StatusResolving:
		return 0.5
	case driver.StatusDone, driver.StatusFailed:
		return 1.0
	default:
		return 0.0
	}
}

func statusLabel(item worldItem) string {
	if item.cached && item.status.Terminal() {
		return "cached"
	}
	return item.status.String()
}

func countLabel(item worldItem) string {
	if item.mismatches > 0 {
		return fmt.Sprintf("%d calls, %d off", item.calls, item.mismatches)
	}
	return fmt.Sprintf("%d calls", item.calls)
}

func styleStatus(status driver.Status) lipgloss.Style {
	switch status {
	case driver.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.StatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case driver.StatusLoading, driver.StatusResolving:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
