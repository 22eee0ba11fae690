package placeholder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchhook/internal/placeholder"
)

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	ctx := placeholder.Context{"app": "notepad", "timestamp": "T"}
	out := placeholder.Render(`{"a":"{app}","b":"{app}","t":"{timestamp}"}`, ctx)
	assert.Equal(t, `{"a":"notepad","b":"notepad","t":"T"}`, out)
}

func TestRenderLeavesUnknownTokens(t *testing.T) {
	out := placeholder.Render("{app} {user} {}", placeholder.Context{"app": "x"})
	assert.Equal(t, "x {user} {}", out)
}

func TestRenderIsDeterministic(t *testing.T) {
	ctx := placeholder.Context{"app": "{timestamp}", "timestamp": "{app}", "pid": "7"}
	tmpl := "{app}|{timestamp}|{pid}|{app}"

	first := placeholder.Render(tmpl, ctx)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, placeholder.Render(tmpl, ctx))
	}
	// values are not rescanned
	assert.Equal(t, "{timestamp}|{app}|7|{timestamp}", first)
}

func TestRenderEmptyInputs(t *testing.T) {
	assert.Equal(t, "", placeholder.Render("", placeholder.Context{"app": "x"}))
	assert.Equal(t, "{app}", placeholder.Render("{app}", nil))
}

func TestFormatTimestampRoundTrips(t *testing.T) {
	zone := time.FixedZone("test", 2*60*60)
	ts := time.Date(2024, 3, 9, 14, 5, 6, 123456700, zone)

	s := placeholder.FormatTimestamp(ts)
	assert.Equal(t, "2024-03-09T14:05:06.1234567+02:00", s)

	parsed, err := time.Parse(placeholder.TimestampLayout, s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestCloneIsIndependent(t *testing.T) {
	ctx := placeholder.Context{"app": "a"}
	c := ctx.Clone()
	c["app"] = "b"
	assert.Equal(t, "a", ctx["app"])
}
