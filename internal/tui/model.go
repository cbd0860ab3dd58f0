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

	"assessment-rag/internal/models"
)

// Recommender is the TUI-facing subset of the recommendation service.
type Recommender interface {
	Recommend(ctx context.Context, query string) (*models.Answer, error)
}

// answerMsg carries the result of an asynchronous recommendation.
type answerMsg struct {
	query  string
	answer *models.Answer
	err    error
}

// Model is the Bubble Tea model for the terminal recommender.
type Model struct {
	service  Recommender
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	answer   *models.Answer
	summary  string
	status   string
	loading  bool
	ready    bool
}

// New creates a model. timeout bounds each query; zero means no limit.
func New(service Recommender, summary string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the role and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, timeout: timeout, input: ti, viewport: vp, summary: summary, status: "Ready. Type a query."}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, query box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = nil
		} else {
			m.answer = msg.answer
			m.status = fmt.Sprintf("%d recommendations for %q", len(msg.answer.Assessments), msg.query)
		}
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.loading {
				return m, nil
			}
			m.loading = true
			m.status = fmt.Sprintf("Searching for %q...", q)
			return m, m.recommend(q)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// recommend runs the query off the update loop.
func (m Model) recommend(q string) tea.Cmd {
	service, timeout := m.service, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		ans, err := service.Recommend(ctx, q)
		return answerMsg{query: q, answer: ans, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SHL Assessment Recommender")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No results yet."
	}
	if raw, ok := m.answer.Fallback(); ok {
		if strings.TrimSpace(raw) == "" {
			return "No recommendations found."
		}
		return raw
	}
	var sb strings.Builder
	for i, a := range m.answer.Assessments {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, a.Name)))
		sb.WriteString("\n")
		writeDetail(&sb, "Test Type", a.TestType)
		writeDetail(&sb, "Key Features", a.KeyFeatures)
		writeDetail(&sb, "Description", a.Description)
		duration := a.DurationText
		if duration == "" {
			duration = models.DefaultDuration
		}
		writeDetail(&sb, "Duration", duration)
		sb.WriteString("  • Remote Testing: " + yesNoTag(a.RemoteTesting) + "\n")
		sb.WriteString("  • Adaptive/IRT: " + yesNoTag(a.Adaptive) + "\n")
		writeDetail(&sb, "URL", a.URL)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeDetail(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "  • %s: %s\n", label, value)
}

func yesNoTag(v string) string {
	if strings.EqualFold(v, "yes") {
		return yesStyle.Render(v)
	}
	return noStyle.Render(v)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	yesStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	noStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Run starts the program on the alternate screen and blocks until it exits.
func Run(service Recommender, summary string, timeout time.Duration) error {
	p := tea.NewProgram(New(service, summary, timeout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
