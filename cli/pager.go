package cli

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var pagerHelpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	PaddingLeft(2)

// pagerModel represents the state for the report pager UI
type pagerModel struct {
	viewport viewport.Model
	content  string
	ready    bool
}

func newPager(content string) *pagerModel {
	return &pagerModel{content: content}
}

// Init initializes the pager model
func (m *pagerModel) Init() tea.Cmd {
	return nil
}

// Update handles user input and updates the model state
func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "f", "pagedown", "space":
			m.viewport.ScrollDown(m.viewport.Height)
		case "b", "pageup", "shift+space":
			m.viewport.ScrollUp(m.viewport.Height)
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.Style = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				PaddingLeft(2).
				PaddingRight(2)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the current state of the model
func (m *pagerModel) View() string {
	if !m.ready {
		return "\nInitializing..."
	}
	help := pagerHelpStyle.Render("↑/k up • ↓/j down • space/f forward • b back • g top • G bottom • q quit")
	return m.viewport.View() + "\n" + help
}

// runPager starts the pager program with the given content
func runPager(content string) error {
	p := tea.NewProgram(
		newPager(content),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
