// Package placeholder renders {name} tokens in callback body templates.
package placeholder

import (
	"sort"
	"strings"
	"time"
)

// Keys understood by the request builder
const (
	KeyApp        = "app"
	KeyTimestamp  = "timestamp"
	KeyPID        = "pid"
	KeyDispatchID = "dispatch_id"
	KeyHostname   = "hostname"
)

// Unknown is substituted for {app} when no target name is set
const Unknown = "unknown"

// TimestampLayout is sortable, keeps a fixed seven digit fraction and carries the
// zone offset, so rendered values round-trip through time.Parse.
const TimestampLayout = "2006-01-02T15:04:05.0000000Z07:00"

// Context maps placeholder names (without braces) to their substitution values.
type Context map[string]string

// FormatTimestamp renders t with TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Clone returns an independent copy of c
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Token returns the literal token for key, e.g. "{app}"
func Token(key string) string {
	return "{" + key + "}"
}

// Render replaces every literal occurrence of {key} for each key in ctx.
// Replacement is a single pass: substituted values are never rescanned, and
// tokens whose key is absent from ctx are left as they are.
func Render(template string, ctx Context) string {
	if len(ctx) == 0 || template == "" {
		return template
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Token(k), ctx[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
