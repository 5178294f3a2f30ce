// Package tui is the interactive terminal console: a command prompt over a
// scrolling log of command records.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/model"
)

// Runner executes command lines for the console. Implementations exist for
// an in-process interpreter and for a remote server.
type Runner interface {
	Run(ctx context.Context, line string) (model.CommandRecord, error)
	Suggest(ctx context.Context, partial string) ([]command.Suggestion, error)
}

const (
	prompt         = "mission> "
	maxSuggestions = 3
	chromeLines    = 5 // title, suggestions, input, status, spacing
)

// entry is one line of the scrollback. Pending entries have no record yet.
type entry struct {
	line   string
	at     time.Time
	record *model.CommandRecord
}

// resultMsg carries a finished command back into Update.
type resultMsg struct {
	index  int
	record model.CommandRecord
	err    error
}

// Model is the Bubble Tea model for the console.
type Model struct {
	runner Runner
	ctx    context.Context
	now    func() time.Time

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	entries     []entry
	recall      []string
	recallPos   int
	suggestions []command.Suggestion
	pending     int
}

// New builds a console model over runner. ctx bounds every command it
// runs.
func New(ctx context.Context, runner Runner) Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = "type 'help' for available commands"
	in.PromptStyle = promptStyle
	in.CharLimit = 256
	in.Focus()

	return Model{
		runner:   runner,
		ctx:      ctx,
		now:      time.Now,
		input:    in,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeLines, 1)
		m.input.Width = max(msg.Width-len(prompt)-1, 10)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyTab:
			if len(m.suggestions) > 0 {
				keyword := strings.Fields(m.suggestions[0].Command)[0]
				m.input.SetValue(keyword + " ")
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyUp:
			m.recallLine(-1)
			return m, nil
		case tea.KeyDown:
			m.recallLine(1)
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case resultMsg:
		m.pending--
		if msg.index >= 0 && msg.index < len(m.entries) {
			rec := msg.record
			if msg.err != nil && rec.Status == "" {
				rec = model.CommandRecord{
					Command:   m.entries[msg.index].line,
					Timestamp: m.entries[msg.index].at,
					Status:    model.CommandError,
					Result:    msg.err.Error(),
				}
			}
			entries := append([]entry{}, m.entries...)
			entries[msg.index].record = &rec
			m.entries = entries
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.input.Value() != before {
		m.updateSuggestions()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.suggestions = nil
	if line == "" {
		return m, nil
	}

	m.recall = append(m.recall, line)
	m.recallPos = len(m.recall)
	m.entries = append(m.entries, entry{line: line, at: m.now()})
	m.pending++
	m.refresh()

	index := len(m.entries) - 1
	runner, ctx := m.runner, m.ctx
	return m, func() tea.Msg {
		rec, err := runner.Run(ctx, line)
		return resultMsg{index: index, record: rec, err: err}
	}
}

func (m *Model) recallLine(delta int) {
	if len(m.recall) == 0 {
		return
	}
	m.recallPos = min(max(m.recallPos+delta, 0), len(m.recall))
	if m.recallPos == len(m.recall) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.recall[m.recallPos])
	}
	m.input.CursorEnd()
}

func (m *Model) updateSuggestions() {
	partial := strings.TrimSpace(m.input.Value())
	if partial == "" || strings.Contains(partial, " ") {
		m.suggestions = nil
		return
	}
	s, err := m.runner.Suggest(m.ctx, partial)
	if err != nil {
		m.suggestions = nil
		return
	}
	if len(s) > maxSuggestions {
		s = s[:maxSuggestions]
	}
	m.suggestions = s
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m Model) renderLog() string {
	if len(m.entries) == 0 {
		return hintStyle.Render("Mission control console ready. Type 'help' to list commands.")
	}
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(timeStyle.Render(e.at.Format(time.TimeOnly)))
		b.WriteString(" ")
		b.WriteString(commandStyle.Render("> " + e.line))
		b.WriteString("\n")
		switch {
		case e.record == nil:
			b.WriteString(pendingStyle.Render("  executing..."))
		case e.record.Status == model.CommandError:
			b.WriteString(errorStyle.Render(indent(e.record.Result)))
		default:
			b.WriteString(resultStyle.Render(indent(e.record.Result)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "initialising console..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("MISSION CONTROL"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderSuggestions())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderSuggestions() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.suggestions))
	for _, s := range m.suggestions {
		parts = append(parts, s.Command)
	}
	return hintStyle.Render("tab: " + strings.Join(parts, "  |  "))
}

func (m Model) renderStatus() string {
	state := "idle"
	if m.pending > 0 {
		state = fmt.Sprintf("processing %d", m.pending)
	}
	return statusStyle.Render(fmt.Sprintf("%d commands  %s  esc to quit", len(m.entries), state))
}

// Pending reports how many submitted lines are still running.
func (m Model) Pending() int { return m.pending }

// Records returns the finished records in submission order.
func (m Model) Records() []model.CommandRecord {
	out := make([]model.CommandRecord, 0, len(m.entries))
	for _, e := range m.entries {
		if e.record != nil {
			out = append(out, *e.record)
		}
	}
	return out
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")).Padding(0, 1)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	commandStyle = lipgloss.NewStyle().Bold(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5733"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
