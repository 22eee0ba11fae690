package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"launchhook/internal/config"
	apperrors "launchhook/internal/errors"
)

// configKeys are the record fields, in display order
var configKeys = []string{
	"targetProcessName",
	"url",
	"method",
	"apiKey",
	"headerBlock",
	"bodyTemplate",
	"autoStartApp",
	"autoStartMonitoring",
}

// canonicalKey resolves key case-insensitively
func canonicalKey(key string) (string, bool) {
	for _, k := range configKeys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

// escapeLines and unescapeLines let multi-line fields travel through
// single-line inputs as literal \n sequences.
func escapeLines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

func unescapeLines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// setConfigValue assigns value to the field named key
func setConfigValue(cfg *config.Config, key, value string) error {
	k, ok := canonicalKey(key)
	if !ok {
		return apperrors.ValidationError(fmt.Sprintf("unknown key %q (known: %s)", key, strings.Join(configKeys, ", ")))
	}

	switch k {
	case "targetProcessName":
		cfg.TargetProcessName = strings.TrimSpace(value)
	case "url":
		cfg.URL = strings.TrimSpace(value)
	case "method":
		cfg.Method = strings.ToUpper(strings.TrimSpace(value))
	case "apiKey":
		cfg.APIKey = value
	case "headerBlock":
		cfg.HeaderBlock = unescapeLines(value)
	case "bodyTemplate":
		cfg.BodyTemplate = value
	case "autoStartApp", "autoStartMonitoring":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apperrors.ValidationError(fmt.Sprintf("%s must be true or false, got %q", k, value))
		}
		if k == "autoStartApp" {
			cfg.AutoStartApp = b
		} else {
			cfg.AutoStartMonitoring = b
		}
	}
	return nil
}

// writeConfig renders cfg as json or yaml
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return apperrors.ValidationError(fmt.Sprintf("unknown format %q (use json or yaml)", format))
	}
}

// editable fields of the config editor
var editFields = []struct {
	key   string
	label string
	hint  string
}{
	{"targetProcessName", "Process name:", "e.g. notepad"},
	{"url", "URL:", config.DefaultURL},
	{"method", "Method:", strings.Join(config.Methods, ", ")},
	{"apiKey", "API key:", "sent as Authorization: Bearer <key>"},
	{"headerBlock", "Headers:", `Key: Value, one per \n`},
	{"bodyTemplate", "Body:", "{app} {timestamp} {pid} {dispatch_id} {hostname}"},
}

// configModel is the interactive editor for the callback settings
type configModel struct {
	inputs      []textinput.Model
	focusIndex  int
	cfg         *config.Config
	err         error
	saved       bool
	showConfirm bool
}

func initialConfigModel(cfg *config.Config) configModel {
	inputs := make([]textinput.Model, len(editFields))

	for i, f := range editFields {
		input := textinput.New()
		input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
		input.CharLimit = 2048
		input.Width = 60
		input.Placeholder = f.hint

		switch f.key {
		case "targetProcessName":
			input.SetValue(cfg.TargetProcessName)
			input.Focus()
		case "url":
			input.SetValue(cfg.URL)
		case "method":
			input.SetValue(cfg.Method)
		case "apiKey":
			input.SetValue(cfg.APIKey)
			input.EchoMode = textinput.EchoPassword
		case "headerBlock":
			input.SetValue(escapeLines(cfg.HeaderBlock))
		case "bodyTemplate":
			input.SetValue(cfg.BodyTemplate)
		}

		inputs[i] = input
	}

	return configModel{inputs: inputs, cfg: cfg}
}

func (m configModel) Init() tea.Cmd {
	return textinput.Blink
}

// apply copies the form into a new record
func (m configModel) apply() (*config.Config, error) {
	next := *m.cfg
	for i, f := range editFields {
		if err := setConfigValue(&next, f.key, m.inputs[i].Value()); err != nil {
			return nil, err
		}
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (m configModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			if m.showConfirm {
				m.showConfirm = false
				return m, nil
			}
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			s := key.String()
			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs) - 1
			} else if m.focusIndex >= len(m.inputs) {
				m.focusIndex = 0
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := 0; i < len(m.inputs); i++ {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
				} else {
					m.inputs[i].Blur()
				}
			}
			return m, tea.Batch(cmds...)

		case "enter":
			if !m.showConfirm {
				if _, err := m.apply(); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.showConfirm = true
				return m, nil
			}

			next, err := m.apply()
			if err == nil {
				err = config.SaveConfig(next, configPath)
			}
			if err != nil {
				m.err = fmt.Errorf("failed to save configuration: %w", err)
				m.showConfirm = false
				return m, nil
			}
			m.cfg = next
			m.saved = true
			return m, tea.Quit
		}
	}

	if m.showConfirm {
		return m, nil
	}
	return m, m.updateInputs(msg)
}

func (m *configModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m configModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("launchhook Configuration") + "\n\n")

	if m.err != nil {
		b.WriteString(statusErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	if m.saved {
		b.WriteString(statusOkStyle.Render("✓ Configuration saved") + "\n")
		return b.String()
	}

	if m.showConfirm {
		b.WriteString("Save these settings? (enter/esc)\n\n")
		for i, f := range editFields {
			v := m.inputs[i].Value()
			if f.key == "apiKey" && v != "" {
				v = strings.Repeat("*", len(v))
			}
			b.WriteString(fmt.Sprintf("%s %s\n", lipgloss.NewStyle().Width(16).Render(f.label), v))
		}
		return b.String()
	}

	for i, f := range editFields {
		label := lipgloss.NewStyle().Width(16).Render(f.label)
		b.WriteString(fmt.Sprintf("%s %s\n\n", label, m.inputs[i].View()))
	}

	b.WriteString("Press Tab to switch fields, Enter to save, Esc to quit.\n")
	return b.String()
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage application configuration",
		Long:  `Show, change or interactively edit the launchhook configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand(), newConfigSetCommand(), newConfigEditCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, nil)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Using defaults: %v\n", err)
			}
			return writeConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format: json or yaml")
	return cmd
}

func newConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Long: fmt.Sprintf(`Change one configuration value and save the file.

Keys: %s.
In headerBlock, \n separates header lines.`, strings.Join(configKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := openSession()
			if err := checkWritable(sess.store.Path(), sess.loadErr); err != nil {
				return err
			}

			var setErr error
			sess.store.Update(func(c *config.Config) {
				setErr = setConfigValue(c, args[0], args[1])
			})
			if setErr != nil {
				return setErr
			}
			cfg := sess.store.Snapshot()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := sess.store.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			if k, _ := canonicalKey(args[0]); k == "autoStartApp" {
				sess.applyAutostart()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", args[0], sess.store.Path())
			return nil
		},
	}

	return cmd
}

func newConfigEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the request settings interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, nil)
			if err := checkWritable(configPath, err); err != nil {
				return err
			}

			p := tea.NewProgram(initialConfigModel(cfg))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running configuration editor: %w", err)
			}
			return nil
		},
	}

	return cmd
}
