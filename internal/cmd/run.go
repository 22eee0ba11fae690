package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"launchhook/internal/config"
	"launchhook/internal/controller"
	"launchhook/internal/monitor"
	"launchhook/internal/status"
	"launchhook/internal/util"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

// statusLines is how many recent statuses the monitor screen shows
const statusLines = 8

// runModel is the interactive control surface. Update is the only place that
// touches the model; controller statuses arrive as statusMsg via Program.Send.
type runModel struct {
	ctrl    *controller.Controller
	store   *config.Store
	spinner spinner.Model

	state    controller.State
	target   string
	statuses []status.Status
	detail   string
	err      error
	loadErr  error
}

// Custom messages
type statusMsg status.Status

type transitionMsg struct {
	err error
}

func initialRunModel(ctrl *controller.Controller, store *config.Store, loadErr error) runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return runModel{
		ctrl:     ctrl,
		store:    store,
		spinner:  s,
		state:    controller.Idle,
		statuses: ctrl.Reporter().Recent(statusLines),
		loadErr:  loadErr,
	}
}

func (m runModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if mc := m.store.MonitorConfig(); mc.AutoStartMonitoring && mc.TargetProcessName != "" {
		cmds = append(cmds, startMonitoringCmd(m.ctrl, m.store))
	}
	return tea.Batch(cmds...)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			m.err = nil
			return m, startMonitoringCmd(m.ctrl, m.store)
		case "x":
			m.err = nil
			return m, stopMonitoringCmd(m.ctrl)
		case "t":
			m.ctrl.Trigger(m.store.MonitorConfig().TargetProcessName)
			return m, nil
		}

	case transitionMsg:
		m.err = msg.err
		m.state = m.ctrl.State()
		m.target = m.ctrl.Target()
		return m, nil

	case statusMsg:
		s := status.Status(msg)
		m.statuses = append(m.statuses, s)
		if len(m.statuses) > statusLines {
			m.statuses = m.statuses[len(m.statuses)-statusLines:]
		}
		if s.Detail != "" {
			m.detail = s.Detail
		}
		m.state = m.ctrl.State()
		m.target = m.ctrl.Target()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("launchhook") + "\n")

	if m.loadErr != nil {
		b.WriteString(dimStyle.Render("Using default configuration: "+m.loadErr.Error()) + "\n")
	}

	cfg := m.store.Snapshot()
	if m.state == controller.Monitoring {
		b.WriteString(statusOkStyle.Render(fmt.Sprintf("%s Monitoring %s", m.spinner.View(), m.target)) + "\n")
	} else {
		target := cfg.TargetProcessName
		if target == "" {
			target = "(none selected)"
		}
		b.WriteString(fmt.Sprintf("Idle. Target: %s\n", target))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s", cfg.Method, cfg.URL)) + "\n\n")

	if m.err != nil {
		b.WriteString(statusErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	var lines []string
	for _, s := range m.statuses {
		line := s.Time.Format("15:04:05") + "  " + s.Message
		if s.Kind == status.KindError {
			line = statusErrorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("No activity yet"))
	}
	b.WriteString(tableStyle.Render(strings.Join(lines, "\n")) + "\n")

	if m.detail != "" {
		b.WriteString("\n" + m.detail + "\n")
	}

	b.WriteString("\nPress s to start, x to stop, t to send a test request, q to quit.")
	return b.String()
}

// Commands
func startMonitoringCmd(ctrl *controller.Controller, store *config.Store) tea.Cmd {
	return func() tea.Msg {
		return transitionMsg{err: ctrl.Start(store.MonitorConfig())}
	}
}

func stopMonitoringCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		return transitionMsg{err: ctrl.Stop()}
	}
}

func newRunCommand() *cobra.Command {
	var (
		nonInteractive bool
		watcherKind    string
		target         string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch for the target process and send callbacks",
		Long: `Start the control surface. When stdin is a terminal an interactive screen is
shown; otherwise (or with --non-interactive) monitoring starts immediately and
statuses are logged until the process is interrupted.

Edits to the configuration file (config set, config edit, select) are picked up
while running; the next callback uses them.

On Linux the kernel proc connector is used by default, which needs CAP_NET_ADMIN.
Use --watcher poll to detect launches by periodic process snapshots instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := openSession()
			var pin func(*config.Config)
			if target != "" {
				name := monitor.SelectionFromEntry(target)
				sess.store.SetTarget(name)
				pin = func(c *config.Config) { c.TargetProcessName = name }
			}
			sess.applyAutostart()

			interactive := !nonInteractive && isatty.IsTerminal(os.Stdin.Fd())
			if interactive {
				// the screen shows every status; log lines would only tear it
				sess.logger.SetOutput(io.Discard)
			}
			sess.watchConfig(pin)

			ctrl, err := sess.newController(watcherKind)
			if err != nil {
				return err
			}
			if target != "" {
				name := sess.store.MonitorConfig().TargetProcessName
				ctrl.Reporter().Publish(status.Status{
					Kind:    status.KindSelectionChanged,
					Message: "Selected: " + name,
					App:     name,
				})
			}

			shutdown := util.NewShutdownHandler(sess.logger, 0)
			shutdown.SetExitFunc(nil)
			shutdown.RegisterShutdownFunc(ctrl.Close)

			if interactive {
				return runInteractive(sess, ctrl, shutdown)
			}
			return runNonInteractive(sess, ctrl, shutdown)
		},
	}

	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Run without the interactive screen")
	cmd.Flags().StringVarP(&watcherKind, "watcher", "w", monitor.DefaultWatcherKind, "Process watcher: netlink (Linux) or poll")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Process to watch, overriding the configured one for this run")

	return cmd
}

func runInteractive(sess *session, ctrl *controller.Controller, shutdown *util.ShutdownHandler) error {
	p := tea.NewProgram(initialRunModel(ctrl, sess.store, sess.loadErr), tea.WithAltScreen())
	ctrl.Reporter().Subscribe(func(s status.Status) {
		p.Send(statusMsg(s))
	})

	// SIGTERM ends the program the same way q does
	shutdown.RegisterShutdownFunc(func() error {
		p.Quit()
		return nil
	})
	shutdown.HandleShutdown()

	_, err := p.Run()
	shutdown.Shutdown()
	if err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}

func runNonInteractive(sess *session, ctrl *controller.Controller, shutdown *util.ShutdownHandler) error {
	shutdown.HandleShutdown()

	if err := ctrl.Start(sess.store.MonitorConfig()); err != nil {
		shutdown.Shutdown()
		return err
	}

	sess.logger.Info("Press Ctrl+C to stop monitoring")
	<-shutdown.Done()
	return nil
}
