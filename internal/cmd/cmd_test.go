package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchhook/internal/config"
	apperrors "launchhook/internal/errors"
	"launchhook/internal/monitor"
)

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, setConfigValue(cfg, "TARGETPROCESSNAME", " notepad "))
	require.NoError(t, setConfigValue(cfg, "method", "put"))
	require.NoError(t, setConfigValue(cfg, "headerBlock", `X-A: 1\nX-B: 2`))
	require.NoError(t, setConfigValue(cfg, "autoStartMonitoring", "true"))

	assert.Equal(t, "notepad", cfg.TargetProcessName)
	assert.Equal(t, "PUT", cfg.Method)
	assert.Equal(t, "X-A: 1\nX-B: 2", cfg.HeaderBlock)
	assert.True(t, cfg.AutoStartMonitoring)

	assert.Error(t, setConfigValue(cfg, "autoStartApp", "maybe"))
	assert.Error(t, setConfigValue(cfg, "nope", "x"))
}

func TestWriteConfigFormats(t *testing.T) {
	cfg := config.Default()
	cfg.TargetProcessName = "notepad"

	var js bytes.Buffer
	require.NoError(t, writeConfig(&js, cfg, "json"))
	assert.Contains(t, js.String(), `"targetProcessName": "notepad"`)

	var ym bytes.Buffer
	require.NoError(t, writeConfig(&ym, cfg, "yaml"))
	assert.Contains(t, ym.String(), "targetProcessName: notepad")

	assert.Error(t, writeConfig(&bytes.Buffer{}, cfg, "toml"))
}

func TestFilterProcesses(t *testing.T) {
	procs := []monitor.ProcessInfo{
		{PID: 1, Name: "bash"},
		{PID: 2, Name: "firefox", Title: "Mozilla Firefox"},
		{PID: 3, Name: "code", Title: "/usr/share/code/code --type=renderer"},
	}

	assert.Len(t, filterProcesses(procs, ""), 3)
	assert.Equal(t, 2, filterProcesses(procs, "MOZILLA")[0].PID)
	assert.Equal(t, 3, filterProcesses(procs, "renderer")[0].PID)
}

func TestRenderProcessTable(t *testing.T) {
	var out bytes.Buffer
	renderProcessTable(&out, []monitor.ProcessInfo{{PID: 42, Name: "notepad"}})
	assert.Contains(t, out.String(), "notepad")
	assert.Contains(t, out.String(), "42")
}

func TestSelectTargetSavesConfig(t *testing.T) {
	old := configPath
	configPath = filepath.Join(t.TempDir(), "config.json")
	defer func() { configPath = old }()

	var out bytes.Buffer
	require.NoError(t, selectTarget(&out, "firefox - Mozilla Firefox"))
	assert.Equal(t, "Selected: firefox\n", out.String())

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "firefox", cfg.TargetProcessName)
	assert.Equal(t, config.DefaultURL, cfg.URL)

	assert.Error(t, selectTarget(&out, "   "))
}

func TestSelectTargetKeepsMalformedConfig(t *testing.T) {
	old := configPath
	configPath = filepath.Join(t.TempDir(), "config.json")
	defer func() { configPath = old }()

	broken := []byte(`{"url": "http://example.com", "method": `)
	require.NoError(t, os.WriteFile(configPath, broken, 0o600))

	var out bytes.Buffer
	err := selectTarget(&out, "notepad")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfigLoad)
	assert.Contains(t, err.Error(), "refusing to overwrite")
	assert.Empty(t, out.String())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}

func TestCheckWritable(t *testing.T) {
	assert.NoError(t, checkWritable("c.json", nil))

	_, missing := config.LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, missing)
	assert.NoError(t, checkWritable("c.json", missing))

	assert.Error(t, checkWritable("c.json", apperrors.ConfigLoad(errors.New("bad json"), "load")))
}

func TestConfigModelApply(t *testing.T) {
	m := initialConfigModel(config.Default())
	m.inputs[0].SetValue("notepad")
	m.inputs[4].SetValue(`Content-Type: application/json\nX-Env: prod`)

	next, err := m.apply()
	require.NoError(t, err)
	assert.Equal(t, "notepad", next.TargetProcessName)
	assert.Equal(t, "Content-Type: application/json\nX-Env: prod", next.HeaderBlock)

	m.inputs[1].SetValue("not a url")
	_, err = m.apply()
	assert.Error(t, err)
}

func TestConfigModelRejectsInvalidOnEnter(t *testing.T) {
	m := initialConfigModel(config.Default())
	m.inputs[1].SetValue("relative/path")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := updated.(configModel)
	assert.Error(t, cm.err)
	assert.False(t, cm.showConfirm)
}

func TestBuildInfoLines(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.23.1",
		Main:      debug.Module{Path: "launchhook", Version: "v1.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "4f2c9e1"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	lines := buildInfoLines(info)
	require.Len(t, lines, 4)
	assert.Equal(t, "launchhook v1.2.0", lines[0])
	assert.Equal(t, "Commit: 4f2c9e1 (modified)", lines[1])
	assert.Equal(t, "Built: 2026-10-01T12:00:00Z", lines[2])
	assert.Contains(t, lines[3], "Go: go1.23.1")

	info.Main.Version = "(devel)"
	assert.Equal(t, "launchhook dev", buildInfoLines(info)[0])

	nothing := buildInfoLines(nil)
	assert.Equal(t, "Commit: none", nothing[1])
	assert.Equal(t, "Built: unknown", nothing[2])
}

func TestBuildInfoLinesPrefersStampedValues(t *testing.T) {
	oldV, oldC := version, commit
	version, commit = "v2.0.0", "abc123"
	defer func() { version, commit = oldV, oldC }()

	info := &debug.BuildInfo{
		Main:     debug.Module{Version: "v1.0.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "zzz"}},
	}
	lines := buildInfoLines(info)
	assert.Equal(t, "launchhook v2.0.0", lines[0])
	assert.Equal(t, "Commit: abc123", lines[1])
}

func TestCreateConfigKeepsExistingFile(t *testing.T) {
	old := configPath
	defer func() { configPath = old }()

	path := filepath.Join(t.TempDir(), "config.json")
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root := NewRootCommand()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"create-config", path}, args...))
		err := root.Execute()
		return out.String(), err
	}

	out, err := run()
	require.NoError(t, err)
	assert.Contains(t, out, "Default configuration created at "+path)

	require.NoError(t, os.WriteFile(path, []byte(`{"url": "http://kept.example"}`), 0o600))
	_, err = run()
	assert.ErrorContains(t, err, "already exists")
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://kept.example", cfg.URL)

	_, err = run("--force")
	require.NoError(t, err)
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultURL, cfg.URL)
}
