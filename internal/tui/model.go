// Package tui is the interactive chat client over the message pipeline,
// built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/normanking/synapse/internal/orchestrator"
)

const (
	inputHeight  = 3
	headerHeight = 1
	footerHeight = 1
)

// resultMsg carries a finished pipeline run back into the update loop.
type resultMsg struct {
	userText string
	result   *orchestrator.PipelineResult
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	orch     *orchestrator.Orchestrator
	styles   Styles
	renderer *glamour.TermRenderer

	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	transcript []string

	width  int
	height int
	busy   bool
	err    error
}

// New creates the chat model over an orchestrator.
func New(orch *orchestrator.Orchestrator) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		orch:    orch,
		styles:  NewStyles(),
		input:   ti,
		spinner: sp,
	}

	if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil {
		m.renderer = r
	}

	return m
}

// Run starts the interactive session and blocks until it exits.
func Run(orch *orchestrator.Orchestrator) error {
	_, err := tea.NewProgram(New(orch), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-inputHeight-footerHeight)
		m.viewport.SetContent(strings.Join(m.transcript, "\n"))
		m.viewport.GotoBottom()
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+r":
			m.orch.Reset()
			m.transcript = nil
			m.viewport.SetContent("")
			m.appendSystem("Session reset.")
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.appendUser(text)
			return m, tea.Batch(m.spinner.Tick, m.process(text))
		}

	case resultMsg:
		m.busy = false
		m.appendResult(msg.result)
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	header := m.styles.Header.Render("synapse") + " " + m.styles.Badge.Render("chat")

	footer := m.styles.Footer.Render("enter: send | ctrl+r: reset | ctrl+c: quit")
	if m.busy {
		footer = m.styles.Footer.Render(m.spinner.View() + " thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		m.styles.InputArea.Render(m.input.View()),
		footer)
}

// process runs the pipeline off the update loop.
func (m Model) process(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		return resultMsg{
			userText: text,
			result:   orch.ProcessMessage(context.Background(), text),
		}
	}
}

func (m *Model) appendUser(text string) {
	m.appendLine(m.styles.UserLabel.Render("You: ") + text)
}

func (m *Model) appendSystem(text string) {
	m.appendLine(m.styles.SystemText.Render(text))
}

func (m *Model) appendResult(result *orchestrator.PipelineResult) {
	content := result.Response
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimSpace(rendered)
		}
	}

	label := m.styles.AssistantLabel.Render("Synapse: ")
	if !result.Success {
		m.appendLine(label + m.styles.ErrorText.Render(content))
	} else {
		m.appendLine(label + content)
	}

	if result.Decision != nil {
		m.appendSystem(fmt.Sprintf("  intent=%s confidence=%.2f tools=%d time=%s",
			result.Decision.Intent, result.Decision.Confidence,
			len(result.ToolResults), result.TotalTime.Round(0)))
	}
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line, "")
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}
