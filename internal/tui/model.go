package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// QAPort is the TUI-facing subset of the answering pipeline.
type QAPort interface {
	AnswerQuestion(question string, k int, opts port.GenerateOptions) domain.Answer
}

type answerMsg struct {
	answer domain.Answer
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	service  QAPort
	topK     int
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	history  []string
	waiting  bool
	status   string
	ready    bool
}

// New creates a new chat model.
func New(service QAPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(0, 0)

	return Model{
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		status:   "Ready. Ctrl+C to quit.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := inputBoxStyle.GetFrameSize()
		_, ch := chatBoxStyle.GetFrameSize()
		vh := msg.Height - qh - ch - 3
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(strings.Join(m.history, "\n\n"))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				break
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			m.appendEntry(questionStyle.Render("You: ") + question)
			return m, tea.Batch(m.spinner.Tick, m.ask(question))
		}

	case answerMsg:
		m.waiting = false
		m.appendEntry(renderAnswer(msg.answer))
		if msg.answer.Failed() {
			m.status = "Error: " + msg.answer.Error
		} else {
			m.status = fmt.Sprintf("Answered from %d chunks, confidence %.2f",
				msg.answer.RetrievedDocuments, msg.answer.Confidence)
		}
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := lipgloss.NewStyle().Bold(true).Render("ragqa chat")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := m.status
	if m.waiting {
		status = m.spinner.View() + " " + status
	}
	statusLine := statusStyle.Render(status)

	return header + "\n" + chat + "\n" + input + "\n" + statusLine
}

func (m *Model) appendEntry(entry string) {
	m.history = append(m.history, entry)
	m.viewport.SetContent(strings.Join(m.history, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{answer: m.service.AnswerQuestion(question, m.topK, port.GenerateOptions{})}
	}
}

func renderAnswer(a domain.Answer) string {
	var b strings.Builder
	b.WriteString(answerStyle.Render("ragqa: "))
	b.WriteString(a.Answer)

	if len(a.Sources) > 0 {
		b.WriteString("\n")
		for _, src := range a.Sources {
			b.WriteString(sourceStyle.Render(
				fmt.Sprintf("  [%.2f] %s - %s", src.Similarity, src.Source, src.Title)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
