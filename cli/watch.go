package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	watchIntervalFlag time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Live production dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchIntervalFlag, "interval", 30*time.Second, "Refresh interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchIntervalFlag < 5*time.Second {
		return failure.New(InvalidArguments,
			failure.Message("--interval must be at least 5s"),
		)
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	systemID, err := resolveSystem(ctx, client, cfg)
	if err != nil {
		return err
	}
	system, err := client.GetSystem(ctx, systemID)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		newWatchModel(client, system, watchIntervalFlag),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	watchLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	watchErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	watchFrameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

type watchReading struct {
	summary tigo.Summary
	err     error
}

type watchTickMsg time.Time

// watchModel represents the state for the live dashboard UI
type watchModel struct {
	client   *tigo.Client
	system   tigo.System
	interval time.Duration

	spinner  spinner.Model
	summary  tigo.Summary
	haveData bool
	lastErr  error
	updated  time.Time
}

func newWatchModel(client *tigo.Client, system tigo.System, interval time.Duration) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &watchModel{
		client:   client,
		system:   system,
		interval: interval,
		spinner:  s,
	}
}

func (m *watchModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	summary, err := m.client.GetSummary(ctx, m.system.SystemID)
	return watchReading{summary: summary, err: err}
}

func (m *watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetch
		}

	case watchReading:
		if msg.err != nil {
			// Keep showing the last good reading alongside the error
			m.lastErr = msg.err
		} else {
			m.summary = msg.summary
			m.haveData = true
			m.lastErr = nil
			m.updated = time.Now()
		}
		return m, m.tick()

	case watchTickMsg:
		return m, m.fetch

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current state of the model
func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render(m.system.Name))
	b.WriteString("\n\n")

	if !m.haveData {
		b.WriteString(m.spinner.View() + " fetching production data")
	} else {
		row := func(label, value string) {
			b.WriteString(watchLabelStyle.Render(label))
			b.WriteString(value)
			b.WriteString("\n")
		}
		row("Current power", insights.FormatPower(float64(m.summary.LastPowerDC)))
		row("Energy today", insights.FormatEnergy(float64(m.summary.DailyEnergyDC)))
		row("Lifetime energy", insights.FormatEnergy(float64(m.summary.LifetimeEnergyDC)))
		if m.summary.UpdatedOn != "" {
			row("Last report", m.summary.UpdatedOn)
		}
		row("Refreshed", m.updated.Format("15:04:05"))
	}

	if m.lastErr != nil {
		msg := m.lastErr.Error()
		if fmsg := failure.MessageOf(m.lastErr); fmsg != "" {
			msg = fmsg.String()
		}
		b.WriteString("\n" + watchErrorStyle.Render(msg))
	}

	help := pagerHelpStyle.Render("r refresh • q quit")
	return watchFrameStyle.Render(b.String()) + "\n" + help
}
