package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"launchhook/internal/monitor"
)

// listModel shows the running processes and lets the user pick the target
type listModel struct {
	table     table.Model
	processes []monitor.ProcessInfo
	filter    string
	selected  string
	err       error
	loaded    bool
}

type processesMsg struct {
	processes []monitor.ProcessInfo
	err       error
}

func initialListModel(filter string) listModel {
	columns := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Name", Width: 24},
		{Title: "Title", Width: 48},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(table.Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4")),
	})

	return listModel{table: t, filter: filter}
}

func loadProcessesCmd() tea.Cmd {
	return func() tea.Msg {
		procs, err := monitor.ListProcesses()
		return processesMsg{processes: procs, err: err}
	}
}

func (m listModel) Init() tea.Cmd {
	return loadProcessesCmd()
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadProcessesCmd()
		case "enter":
			if row := m.table.SelectedRow(); row != nil {
				m.selected = row[1]
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case processesMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.processes = filterProcesses(msg.processes, m.filter)

		rows := make([]table.Row, 0, len(m.processes))
		for _, p := range m.processes {
			rows = append(rows, table.Row{strconv.Itoa(p.PID), p.Name, p.Title})
		}
		m.table.SetRows(rows)
		return m, nil
	}

	return m, nil
}

func (m listModel) View() string {
	title := titleStyle.Render("launchhook: Running Processes")

	if m.err != nil {
		return title + "\n\n" +
			statusErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			"Press q to quit."
	}

	if !m.loaded {
		return title + "\n\nListing processes...\n\nPress q to quit."
	}

	return title + "\n\n" +
		tableStyle.Render(m.table.View()) + "\n\n" +
		"Press ↑/↓ to navigate, enter to select, r to refresh, q to quit."
}

// filterProcesses keeps entries whose name or title contains filter, case-insensitively
func filterProcesses(procs []monitor.ProcessInfo, filter string) []monitor.ProcessInfo {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return procs
	}
	var out []monitor.ProcessInfo
	for _, p := range procs {
		if strings.Contains(strings.ToLower(p.Name), filter) || strings.Contains(strings.ToLower(p.Title), filter) {
			out = append(out, p)
		}
	}
	return out
}

// renderProcessTable writes procs as a plain text table
func renderProcessTable(w io.Writer, procs []monitor.ProcessInfo) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(prettytable.Row{"PID", "Name", "Title"})
	for _, p := range procs {
		t.AppendRow(prettytable.Row{p.PID, p.Name, p.Title})
	}
	t.AppendFooter(prettytable.Row{"", "Total", len(procs)})
	t.SetStyle(prettytable.StyleLight)
	t.Render()
}

func newListCommand() *cobra.Command {
	var (
		plain  bool
		unique bool
		filter string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List running processes and pick the target",
		Long: `Show the running processes. In the interactive view, pressing enter on a row
makes that process the target and saves the configuration.

With --plain, or when stdout is not a terminal, a text table is printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
				procs, err := monitor.ListProcesses()
				if err != nil {
					return err
				}
				procs = filterProcesses(procs, filter)
				if unique {
					for _, name := range monitor.UniqueNames(procs) {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				}
				renderProcessTable(cmd.OutOrStdout(), procs)
				return nil
			}

			p := tea.NewProgram(initialListModel(filter))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("error listing processes: %w", err)
			}

			if m, ok := final.(listModel); ok && m.selected != "" {
				return selectTarget(cmd.OutOrStdout(), m.selected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print a text table instead of the interactive view")
	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "With --plain, print each process name once")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show processes whose name or title contains this text")

	return cmd
}
