package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGRegistrarLifecycle(t *testing.T) {
	r := &XDGRegistrar{Dir: filepath.Join(t.TempDir(), "autostart")}

	on, err := r.Enabled()
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, Apply(r, true, "/opt/launch hook/launchhook"))
	on, err = r.Enabled()
	require.NoError(t, err)
	assert.True(t, on)

	data, err := os.ReadFile(filepath.Join(r.Dir, "launchhook.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `Exec="/opt/launch hook/launchhook" run`)

	require.NoError(t, Apply(r, false, ""))
	on, err = r.Enabled()
	require.NoError(t, err)
	assert.False(t, on)

	// removing twice is fine
	assert.NoError(t, r.Disable())
}

func TestDesktopEntryPlainPath(t *testing.T) {
	assert.Contains(t, desktopEntry("/usr/bin/launchhook"), "Exec=/usr/bin/launchhook run\n")
}
