package monitor

import (
	"path/filepath"
	"strings"
)

// NormalizeName trims name, strips any directory part and appends suffix when
// the name does not already end with it (case-insensitively).
func NormalizeName(name, suffix string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.ContainsAny(name, `/\`) {
		name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	}
	if suffix != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
		name += suffix
	}
	return name
}

// StripSuffix removes a trailing suffix from name, case-insensitively
func StripSuffix(name, suffix string) string {
	if suffix == "" || len(name) <= len(suffix) {
		return name
	}
	if strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		return name[:len(name)-len(suffix)]
	}
	return name
}

// Filter selects process creations by image name
type Filter struct {
	Target string // name as entered by the user
	Suffix string // executable suffix used for normalization
}

// NewFilter builds a filter using the platform executable suffix
func NewFilter(target string) Filter {
	return Filter{Target: strings.TrimSpace(target), Suffix: ExecutableSuffix}
}

// Image returns the normalized image name the filter matches
func (f Filter) Image() string {
	return NormalizeName(f.Target, f.Suffix)
}

// Matches reports whether image names the target: a case-insensitive exact
// match once both sides are normalized.
func (f Filter) Matches(image string) bool {
	want := f.Image()
	if want == "" {
		return false
	}
	return strings.EqualFold(want, NormalizeName(image, f.Suffix))
}

// Valid reports whether the filter has a target at all
func (f Filter) Valid() bool {
	return f.Image() != ""
}
